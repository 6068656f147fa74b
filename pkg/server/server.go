// Package server exposes the gated operations as MCP tools over stdio.
package server

import (
	"context"
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/evaluator"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const serverName = "llm-fsgate"

// Server binds an Executor to an MCP server.
type Server struct {
	exec   *evaluator.Executor
	logger *zap.Logger
	mcp    *mcp.Server
}

// New registers every tool on a fresh MCP server.
func New(exec *evaluator.Executor, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		exec:   exec,
		logger: logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, for alternative transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	boolPtr := func(b bool) *bool { return &b }
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	writeNonDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true}
	writeDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)}
	openWorld := &mcp.ToolAnnotations{DestructiveHint: boolPtr(true), OpenWorldHint: boolPtr(true)}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpRead,
		Description: "Read the contents of a text file. The file must have an allowed extension and be within the size limit. Encodings are tried in priority order (utf-8 first).\n\nArgs:\n  path: Path to the file to read\n\nReturns the path, detected encoding, size and content.",
		Annotations: readOnly,
	}, s.handleRead)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpWrite,
		Description: "Write content to a text file, replacing anything already there. Parent directories are created.\n\nArgs:\n  path: Path to the file to write\n  content: Content to write to the file\n  encoding: File encoding (default utf-8)\n\nReturns characters and bytes written and whether the file was created or updated.",
		Annotations: writeDestructive,
	}, s.handleWrite)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpAppend,
		Description: "Append content to a text file, creating it if absent. Rejected if the result would exceed the size limit.\n\nArgs:\n  path: Path to the file to append to\n  content: Content to append\n  encoding: File encoding (default utf-8)",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(false)},
	}, s.handleAppend)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpList,
		Description: "List the contents of a directory, sorted by name.\n\nArgs:\n  path: Directory path (default current directory)\n  showHidden: Whether to show entries starting with '.' (default false)",
		Annotations: readOnly,
	}, s.handleList)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpInfo,
		Description: "Get detailed information about a file or directory: type, size, timestamps, extension, permission flags, MIME type and a charset hint.\n\nArgs:\n  path: Path to the file or directory",
		Annotations: readOnly,
	}, s.handleInfo)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpMkdir,
		Description: "Create a directory, including missing parents. Succeeds if it already exists.\n\nArgs:\n  path: Path of the directory to create",
		Annotations: writeNonDestructive,
	}, s.handleMkdir)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpRunCommand,
		Description: "Execute a shell command with a timeout. Commands naming a blocked program (rm, dd, shutdown, ...) are refused. A non-zero exit code is reported, not treated as an error.\n\nArgs:\n  command: Command to execute\n  workingDirectory: Working directory (default current directory)\n  timeoutSeconds: Timeout in seconds (default 30)\n\nReturns the return code, standard output and error output.",
		Annotations: openWorld,
	}, s.handleRunCommand)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpSearch,
		Description: "Search file contents with ripgrep.\n\nArgs:\n  pattern: Regular expression to search for\n  rootPath: Directory or file to search (default current directory)\n  fileType: ripgrep type name (e.g. 'go'), extension (e.g. '.py') or glob (e.g. '**/*.md')\n  caseSensitive: Match case (default false)\n  maxResults: Maximum matches (default 100)\n  contextLines: Lines of context around each match (default 0)\n\nReturns file:line:text rows; context rows use '-' separators.",
		Annotations: readOnly,
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        evaluator.OpCurrentDirectory,
		Description: "Get the directory relative paths are resolved against.",
		Annotations: readOnly,
	}, s.handleCurrentDirectory)
}

// guard turns an operation result into a tool result. Panics become
// IO_FAILURE text; nothing escapes to the transport.
func (s *Server) guard(op string, run func() evaluator.ExecutionResult) (res *mcp.CallToolResult, _ any, _ error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("operation panicked", zap.String("op", op), zap.Any("panic", r), zap.Stack("stack"))
			err := failure.New(failure.IOFailure, "internal error in %s: %v", op, r)
			res = errorResult(failure.Report(err))
		}
	}()

	result := run()
	if !result.Success {
		return errorResult(result.Text()), nil, nil
	}
	return textResult(result.Text()), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}

func timeoutFromSeconds(seconds int) (time.Duration, error) {
	if seconds < 0 {
		return 0, failure.New(failure.InvalidArgument, "timeoutSeconds must not be negative: %d", seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}
