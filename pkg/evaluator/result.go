package evaluator

import (
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
)

// Operation names, as exposed to callers and written to the audit trail.
const (
	OpRead             = "read"
	OpWrite            = "write"
	OpAppend           = "append"
	OpList             = "list"
	OpInfo             = "info"
	OpMkdir            = "mkdir"
	OpRunCommand       = "runCommand"
	OpSearch           = "search"
	OpCurrentDirectory = "currentDirectory"
)

// ExecutionResult holds the result of one gated operation
type ExecutionResult struct {
	Op            string
	Argument      string
	Success       bool
	Result        string // text report on success
	Error         error
	ExecutionTime time.Duration

	// read
	Content  string
	Encoding string

	// write, append
	BytesWritten int64
	Action       string

	// runCommand
	ExitCode int
	Stdout   string
	Stderr   string

	// search
	Matches   []SearchMatch
	Truncated bool
}

// Text is what the caller sees: the report, or the failure line.
func (r ExecutionResult) Text() string {
	if r.Error != nil {
		return failure.Report(r.Error)
	}
	return r.Result
}

func failed(op, arg string, err error) ExecutionResult {
	return ExecutionResult{Op: op, Argument: arg, Error: err}
}

// WriteRequest is the input to write and append.
type WriteRequest struct {
	Path     string
	Content  string
	Encoding string
}

// ListRequest is the input to list.
type ListRequest struct {
	Path       string
	ShowHidden bool
}

// CommandRequest is one CommandInvocation. Zero Timeout means the policy default.
type CommandRequest struct {
	Command          string
	WorkingDirectory string
	Timeout          time.Duration
}

// SearchRequest is the input to search.
type SearchRequest struct {
	Pattern       string
	RootPath      string
	FileType      string
	CaseSensitive bool
	MaxResults    int
	ContextLines  int
}

// SearchMatch is one line of search output. Context lines carry Context=true.
type SearchMatch struct {
	File    string
	Line    int
	Text    string
	Context bool
}
