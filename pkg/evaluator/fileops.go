package evaluator

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/computerscienceiscool/llm-fsgate/pkg/sandbox"
	"github.com/computerscienceiscool/llm-fsgate/pkg/textcodec"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FileOps composes the guards into the filesystem operations. It holds no
// mutable state; concurrent writers to one path race at the filesystem.
type FileOps struct {
	paths   *sandbox.PathGuard
	exts    *sandbox.ExtensionPolicy
	sizes   *sandbox.SizeGuard
	decoder *textcodec.Decoder
}

// NewFileOps builds the guards from cfg.Policy, anchored at cfg.WorkingDirectory.
func NewFileOps(cfg *config.Config) (*FileOps, error) {
	decoder, err := textcodec.NewDecoder(cfg.Policy.Encodings())
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	return &FileOps{
		paths:   sandbox.NewPathGuard(cfg.WorkingDirectory),
		exts:    sandbox.NewExtensionPolicy(cfg.Policy),
		sizes:   sandbox.NewSizeGuard(cfg.Policy),
		decoder: decoder,
	}, nil
}

var numbers = message.NewPrinter(language.English)

type fileTimes struct {
	created  time.Time
	accessed time.Time
}

type permissions struct {
	read, write, exec bool
}

// Read returns the decoded content of a text file.
func (f *FileOps) Read(path string) ExecutionResult {
	safePath, err := f.paths.Validate(path)
	if err != nil {
		return failed(OpRead, path, err)
	}
	if err := f.exts.Check(safePath); err != nil {
		return failed(OpRead, path, err)
	}

	if _, err := f.sizes.CheckRead(safePath); err != nil {
		return failed(OpRead, path, err)
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		return failed(OpRead, path, ioFailure(err, "cannot read %s", safePath))
	}

	text, enc, err := f.decoder.Decode(data)
	if err != nil {
		return failed(OpRead, path, err)
	}

	return ExecutionResult{
		Op:       OpRead,
		Argument: path,
		Content:  text,
		Encoding: enc,
		Result: fmt.Sprintf("File: %s\nEncoding: %s\nSize: %d characters (%d bytes)\n\n%s",
			safePath, enc, utf8.RuneCountInString(text), len(data), text),
	}
}

// Write replaces the file's content, creating parent directories as needed.
func (f *FileOps) Write(req WriteRequest) ExecutionResult {
	return f.put(OpWrite, req)
}

// Append adds to the end of the file, creating it if absent.
func (f *FileOps) Append(req WriteRequest) ExecutionResult {
	return f.put(OpAppend, req)
}

func (f *FileOps) put(op string, req WriteRequest) ExecutionResult {
	safePath, err := f.paths.Validate(req.Path)
	if err != nil {
		return failed(op, req.Path, err)
	}
	if err := f.exts.Check(safePath); err != nil {
		return failed(op, req.Path, err)
	}

	data, enc, err := textcodec.Encode(req.Content, req.Encoding)
	if err != nil {
		return failed(op, req.Path, err)
	}

	action := "CREATED"
	var existing int64
	info, err := os.Stat(safePath)
	switch {
	case err == nil:
		if info.IsDir() {
			return failed(op, req.Path, failure.New(failure.IOFailure, "path is a directory: %s", safePath))
		}
		action = "UPDATED"
		if op == OpAppend {
			existing = info.Size()
		}
	case !errors.Is(err, fs.ErrNotExist):
		return failed(op, req.Path, ioFailure(err, "cannot stat %s", safePath))
	}

	// Nothing touches the disk until the size check passes.
	if err := f.sizes.CheckWrite(existing, int64(len(data))); err != nil {
		return failed(op, req.Path, err)
	}

	if err := os.MkdirAll(filepath.Dir(safePath), 0755); err != nil {
		return failed(op, req.Path, ioFailure(err, "cannot create parent directories for %s", safePath))
	}

	verb := "wrote"
	if op == OpAppend {
		verb = "appended"
		err = appendFile(safePath, data)
	} else {
		err = os.WriteFile(safePath, data, 0644)
	}
	if err != nil {
		return failed(op, req.Path, ioFailure(err, "cannot write %s", safePath))
	}

	return ExecutionResult{
		Op:           op,
		Argument:     req.Path,
		BytesWritten: int64(len(data)),
		Action:       action,
		Encoding:     enc,
		Result: fmt.Sprintf("Successfully %s %d characters (%d bytes) to: %s\nAction: %s\nEncoding: %s",
			verb, utf8.RuneCountInString(req.Content), len(data), safePath, action, enc),
	}
}

func appendFile(path string, data []byte) error {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// List enumerates a directory sorted by name.
func (f *FileOps) List(req ListRequest) ExecutionResult {
	if req.Path == "" {
		req.Path = "."
	}
	safePath, err := f.paths.Validate(req.Path)
	if err != nil {
		return failed(OpList, req.Path, err)
	}

	info, err := os.Stat(safePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failed(OpList, req.Path, failure.New(failure.NotFound, "directory does not exist: %s", safePath))
		}
		return failed(OpList, req.Path, ioFailure(err, "cannot stat %s", safePath))
	}
	if !info.IsDir() {
		return failed(OpList, req.Path, failure.New(failure.IOFailure, "path is not a directory: %s", safePath))
	}

	// os.ReadDir sorts by filename.
	entries, err := os.ReadDir(safePath)
	if err != nil {
		return failed(OpList, req.Path, ioFailure(err, "cannot list %s", safePath))
	}

	var rows []string
	for _, entry := range entries {
		name := entry.Name()
		if !req.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		st, err := os.Stat(filepath.Join(safePath, name))
		if err != nil {
			rows = append(rows, fmt.Sprintf("ERR  %-40s %10s", name, "Access denied"))
			continue
		}
		kind, size := "DIR ", int64(0)
		if !st.IsDir() {
			kind, size = "FILE", st.Size()
		}
		rows = append(rows, fmt.Sprintf("%s %-40s %10s bytes", kind, name, numbers.Sprintf("%d", size)))
	}

	result := ExecutionResult{Op: OpList, Argument: req.Path}
	if len(rows) == 0 {
		result.Result = fmt.Sprintf("Directory is empty: %s", safePath)
		return result
	}

	header := fmt.Sprintf("Contents of: %s\n%-4s %-40s %15s\n%s",
		safePath, "Type", "Name", "Size", strings.Repeat("-", 60))
	result.Result = header + "\n" + strings.Join(rows, "\n")
	return result
}

// Info describes a file or directory.
func (f *FileOps) Info(path string) ExecutionResult {
	safePath, err := f.paths.Validate(path)
	if err != nil {
		return failed(OpInfo, path, err)
	}

	info, err := os.Stat(safePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failed(OpInfo, path, failure.New(failure.NotFound, "path does not exist: %s", safePath))
		}
		return failed(OpInfo, path, ioFailure(err, "cannot stat %s", safePath))
	}

	times := statTimes(safePath, info)
	access := accessFlags(safePath, info)

	lines := []string{
		"Path: " + safePath,
		"Name: " + info.Name(),
	}
	if info.IsDir() {
		lines = append(lines, "Type: Directory", "Size: N/A (directory)")
	} else {
		lines = append(lines, "Type: File", fmt.Sprintf("Size: %s bytes", numbers.Sprintf("%d", info.Size())))
	}
	lines = append(lines,
		"Created: "+times.created.Format(time.ANSIC),
		"Modified: "+info.ModTime().Format(time.ANSIC),
		"Accessed: "+times.accessed.Format(time.ANSIC),
	)

	if !info.IsDir() {
		ext := filepath.Ext(info.Name())
		if ext == "" {
			ext = "None"
		}
		lines = append(lines, "Extension: "+ext)
	}
	lines = append(lines,
		fmt.Sprintf("Readable: %t", access.read),
		fmt.Sprintf("Writable: %t", access.write),
		fmt.Sprintf("Executable: %t", access.exec),
	)

	if info.Mode().IsRegular() {
		if mtype, err := mimetype.DetectFile(safePath); err == nil {
			lines = append(lines, "MIME Type: "+mtype.String())
		}
		if charset, confidence, ok := sniffCharset(safePath); ok {
			lines = append(lines, fmt.Sprintf("Charset Hint: %s (confidence %d%%)", charset, confidence))
		}
	}

	return ExecutionResult{Op: OpInfo, Argument: path, Result: strings.Join(lines, "\n")}
}

func sniffCharset(path string) (string, int, bool) {
	fh, err := os.Open(path)
	if err != nil {
		return "", 0, false
	}
	defer fh.Close()

	sample := make([]byte, config.CharsetSampleSize)
	n, err := io.ReadFull(fh, sample)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", 0, false
	}
	return textcodec.Guess(sample[:n])
}

// Mkdir creates the directory and any missing ancestors. An existing
// directory is not an error.
func (f *FileOps) Mkdir(path string) ExecutionResult {
	safePath, err := f.paths.Validate(path)
	if err != nil {
		return failed(OpMkdir, path, err)
	}
	if err := os.MkdirAll(safePath, 0755); err != nil {
		return failed(OpMkdir, path, ioFailure(err, "cannot create directory %s", safePath))
	}
	return ExecutionResult{
		Op:       OpMkdir,
		Argument: path,
		Result:   "Successfully created directory: " + safePath,
	}
}

// CurrentDirectory reports the directory relative paths resolve against.
func (f *FileOps) CurrentDirectory() ExecutionResult {
	return ExecutionResult{
		Op:     OpCurrentDirectory,
		Result: "Current working directory: " + f.paths.Base(),
	}
}

// ioFailure classifies an OS error, keeping NotFound distinct from the catch-all.
func ioFailure(err error, format string, args ...any) error {
	if errors.Is(err, fs.ErrNotExist) {
		return failure.Wrap(failure.NotFound, err, format, args...)
	}
	return failure.Wrap(failure.IOFailure, err, format, args...)
}
