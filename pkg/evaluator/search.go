package evaluator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/computerscienceiscool/llm-fsgate/pkg/sandbox"
)

// maxEventSize caps one line of rg --json output.
const maxEventSize = 4 * 1024 * 1024

// SearchRunner delegates pattern matching to ripgrep. There is no in-process
// fallback when the binary is missing.
type SearchRunner struct {
	paths   *sandbox.PathGuard
	binary  string
	timeout time.Duration
}

func NewSearchRunner(cfg *config.Config) *SearchRunner {
	binary := cfg.SearchBinary
	if binary == "" {
		binary = config.DefaultSearchBinary
	}
	return &SearchRunner{
		paths:   sandbox.NewPathGuard(cfg.WorkingDirectory),
		binary:  binary,
		timeout: cfg.Policy.DefaultTimeout(),
	}
}

// Search handles the "search" operation
func (s *SearchRunner) Search(ctx context.Context, req SearchRequest) ExecutionResult {
	if req.Pattern == "" {
		return failed(OpSearch, req.Pattern, failure.New(failure.InvalidArgument, "pattern must not be empty"))
	}
	if req.RootPath == "" {
		req.RootPath = "."
	}
	if req.MaxResults < 0 {
		return failed(OpSearch, req.Pattern, failure.New(failure.InvalidArgument,
			"maxResults must not be negative: %d", req.MaxResults))
	}
	if req.MaxResults == 0 {
		req.MaxResults = config.DefaultMaxSearchResults
	}
	if req.ContextLines < 0 {
		return failed(OpSearch, req.Pattern, failure.New(failure.InvalidArgument,
			"contextLines must not be negative: %d", req.ContextLines))
	}

	root, err := s.paths.Validate(req.RootPath)
	if err != nil {
		return failed(OpSearch, req.Pattern, err)
	}
	if _, err := os.Stat(root); err != nil {
		return failed(OpSearch, req.Pattern, ioFailure(err, "search root not found: %s", root))
	}

	args, err := searchArgs(req, root)
	if err != nil {
		return failed(OpSearch, req.Pattern, err)
	}

	bin, err := exec.LookPath(s.binary)
	if err != nil {
		return failed(OpSearch, req.Pattern, failure.Wrap(failure.ToolUnavailable, err,
			"search tool %q is not installed", s.binary))
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := killGroupOnCancel(exec.CommandContext(runCtx, bin, args...))
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failed(OpSearch, req.Pattern, failure.Wrap(failure.IOFailure, err, "cannot attach to search output"))
	}
	if err := cmd.Start(); err != nil {
		return failed(OpSearch, req.Pattern, failure.Wrap(failure.IOFailure, err, "failed to start %s", s.binary))
	}

	matches, truncated, parseErr := collectMatches(stdout, req.MaxResults, req.ContextLines)
	if truncated || parseErr != nil {
		cancel()
	}
	// Drain so rg is never blocked on a full pipe while we wait.
	io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	// The deadline decides first: a killed search also surfaces as a
	// broken pipe or a signal exit.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return failed(OpSearch, req.Pattern, failure.New(failure.TimedOut, "search timed out after %v", s.timeout))
	}
	if ctx.Err() != nil {
		return failed(OpSearch, req.Pattern, failure.Wrap(failure.IOFailure, ctx.Err(), "search interrupted"))
	}
	if parseErr != nil {
		return failed(OpSearch, req.Pattern, failure.Wrap(failure.IOFailure, parseErr, "cannot parse search output"))
	}
	if !truncated {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			// 1 means no match; 2 means an error, possibly alongside matches.
			if exitErr.ExitCode() != 1 && len(matches) == 0 {
				return failed(OpSearch, req.Pattern, failure.New(failure.IOFailure,
					"search failed: %s", strings.TrimSpace(stderr.String())))
			}
		} else if waitErr != nil {
			return failed(OpSearch, req.Pattern, failure.Wrap(failure.IOFailure, waitErr, "search failed"))
		}
	}

	return ExecutionResult{
		Op:        OpSearch,
		Argument:  req.Pattern,
		Matches:   matches,
		Truncated: truncated,
		Result:    formatSearchOutput(req.Pattern, root, matches, truncated, req.MaxResults),
	}
}

// searchArgs builds the rg invocation. A fileType that looks like a glob is
// passed through --glob, a bare ".ext" becomes "*.ext", anything else is an
// rg type name.
func searchArgs(req SearchRequest, root string) ([]string, error) {
	args := []string{"--json", "--sort", "path"}
	if req.CaseSensitive {
		args = append(args, "--case-sensitive")
	} else {
		args = append(args, "--ignore-case")
	}

	if fileType := strings.TrimSpace(req.FileType); fileType != "" {
		switch {
		case strings.ContainsAny(fileType, "*?[{/"):
			if !doublestar.ValidatePattern(fileType) {
				return nil, failure.New(failure.InvalidArgument, "invalid file type glob: %s", fileType)
			}
			args = append(args, "--glob", fileType)
		case strings.HasPrefix(fileType, "."):
			args = append(args, "--glob", "*"+fileType)
		default:
			args = append(args, "--type", fileType)
		}
	}

	if req.ContextLines > 0 {
		args = append(args, "--context", strconv.Itoa(req.ContextLines))
	}
	return append(args, "--regexp", req.Pattern, "--", root), nil
}

type rgEvent struct {
	Type string `json:"type"`
	Data struct {
		Path       rgText `json:"path"`
		Lines      rgText `json:"lines"`
		LineNumber int    `json:"line_number"`
	} `json:"data"`
}

// rgText is rg's arbitrary-data object: UTF-8 in text, otherwise base64 in bytes.
type rgText struct {
	Text  string `json:"text"`
	Bytes string `json:"bytes"`
}

func (t rgText) String() string {
	if t.Bytes == "" {
		return t.Text
	}
	raw, err := base64.StdEncoding.DecodeString(t.Bytes)
	if err != nil {
		return t.Text
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

// collectMatches reads rg --json events until maxResults matches are held
// and another one arrives, which is reported as truncation.
//
// Context lines are held back until the next match or the end of output.
// On truncation only those inside the last kept match's trailing window
// (same file, within contextLines) are kept; the rest lead up to the
// dropped match.
func collectMatches(r io.Reader, maxResults, contextLines int) ([]SearchMatch, bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxEventSize)

	var out, pending []SearchMatch
	var last SearchMatch
	count := 0
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev rgEvent
		if err := sonic.Unmarshal(line, &ev); err != nil {
			return out, false, err
		}
		if ev.Type != "match" && ev.Type != "context" {
			continue
		}
		m := SearchMatch{
			File:    ev.Data.Path.String(),
			Line:    ev.Data.LineNumber,
			Text:    strings.TrimRight(ev.Data.Lines.String(), "\r\n"),
			Context: ev.Type == "context",
		}
		if m.Context {
			pending = append(pending, m)
			continue
		}

		if count == maxResults {
			for _, c := range pending {
				if c.File == last.File && c.Line > last.Line && c.Line <= last.Line+contextLines {
					out = append(out, c)
				}
			}
			return out, true, nil
		}
		count++
		out = append(out, pending...)
		pending = pending[:0]
		out = append(out, m)
		last = m
	}
	return append(out, pending...), false, sc.Err()
}

// formatSearchOutput formats search results for output
func formatSearchOutput(pattern, root string, matches []SearchMatch, truncated bool, maxResults int) string {
	var output strings.Builder

	count := 0
	for _, m := range matches {
		if !m.Context {
			count++
		}
	}

	output.WriteString(fmt.Sprintf("Search: %s\n", pattern))
	output.WriteString(fmt.Sprintf("Root: %s\n", root))
	if count == 0 {
		output.WriteString("No matches found.")
		return output.String()
	}
	output.WriteString(fmt.Sprintf("Matches: %d\n\n", count))

	for _, m := range matches {
		sep := ":"
		if m.Context {
			sep = "-"
		}
		output.WriteString(fmt.Sprintf("%s%s%d%s%s\n", m.File, sep, m.Line, sep, m.Text))
	}

	if truncated {
		output.WriteString(fmt.Sprintf("\n[Results truncated at %d matches]\n", maxResults))
	}
	return strings.TrimRight(output.String(), "\n")
}
