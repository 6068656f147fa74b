package server

import (
	"context"

	"github.com/computerscienceiscool/llm-fsgate/pkg/evaluator"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type pathInput struct {
	Path string `json:"path" jsonschema:"Path to the file or directory"`
}

type writeInput struct {
	Path     string `json:"path" jsonschema:"Path to the file"`
	Content  string `json:"content" jsonschema:"Text content"`
	Encoding string `json:"encoding,omitempty" jsonschema:"Target encoding (default utf-8)"`
}

type listInput struct {
	Path       string `json:"path,omitempty" jsonschema:"Directory path (default .)"`
	ShowHidden bool   `json:"showHidden,omitempty" jsonschema:"Include entries starting with '.'"`
}

type runCommandInput struct {
	Command          string `json:"command" jsonschema:"Command to execute"`
	WorkingDirectory string `json:"workingDirectory,omitempty" jsonschema:"Working directory (default .)"`
	TimeoutSeconds   int    `json:"timeoutSeconds,omitempty" jsonschema:"Timeout in seconds (default 30)"`
}

type searchInput struct {
	Pattern       string `json:"pattern" jsonschema:"Regular expression to search for"`
	RootPath      string `json:"rootPath,omitempty" jsonschema:"Directory or file to search (default .)"`
	FileType      string `json:"fileType,omitempty" jsonschema:"ripgrep type name, extension or glob"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"Match case (default false)"`
	MaxResults    int    `json:"maxResults,omitempty" jsonschema:"Maximum matches (default 100)"`
	ContextLines  int    `json:"contextLines,omitempty" jsonschema:"Context lines around each match (default 0)"`
}

type emptyInput struct{}

func (s *Server) handleRead(ctx context.Context, _ *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpRead, func() evaluator.ExecutionResult {
		return s.exec.Read(ctx, input.Path)
	})
}

func (s *Server) handleWrite(ctx context.Context, _ *mcp.CallToolRequest, input writeInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpWrite, func() evaluator.ExecutionResult {
		return s.exec.Write(ctx, evaluator.WriteRequest(input))
	})
}

func (s *Server) handleAppend(ctx context.Context, _ *mcp.CallToolRequest, input writeInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpAppend, func() evaluator.ExecutionResult {
		return s.exec.Append(ctx, evaluator.WriteRequest(input))
	})
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpList, func() evaluator.ExecutionResult {
		return s.exec.List(ctx, evaluator.ListRequest(input))
	})
}

func (s *Server) handleInfo(ctx context.Context, _ *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpInfo, func() evaluator.ExecutionResult {
		return s.exec.Info(ctx, input.Path)
	})
}

func (s *Server) handleMkdir(ctx context.Context, _ *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpMkdir, func() evaluator.ExecutionResult {
		return s.exec.Mkdir(ctx, input.Path)
	})
}

func (s *Server) handleRunCommand(ctx context.Context, _ *mcp.CallToolRequest, input runCommandInput) (*mcp.CallToolResult, any, error) {
	timeout, err := timeoutFromSeconds(input.TimeoutSeconds)
	if err != nil {
		return errorResult(failure.Report(err)), nil, nil
	}
	return s.guard(evaluator.OpRunCommand, func() evaluator.ExecutionResult {
		return s.exec.RunCommand(ctx, evaluator.CommandRequest{
			Command:          input.Command,
			WorkingDirectory: input.WorkingDirectory,
			Timeout:          timeout,
		})
	})
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpSearch, func() evaluator.ExecutionResult {
		return s.exec.Search(ctx, evaluator.SearchRequest(input))
	})
}

func (s *Server) handleCurrentDirectory(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	return s.guard(evaluator.OpCurrentDirectory, func() evaluator.ExecutionResult {
		return s.exec.CurrentDirectory(ctx)
	})
}
