package evaluator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Success(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	content := "Hello, World!\nThis is a test file."
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkingDirectory, "test.txt"), []byte(content), 0644))

	result := ops.Read("test.txt")
	require.NoError(t, result.Error)
	assert.Equal(t, content, result.Content)
	assert.Equal(t, "utf-8", result.Encoding)
	assert.Contains(t, result.Result, "Encoding: utf-8")
	assert.Contains(t, result.Result, "Size: 34 characters (34 bytes)")
	assert.True(t, strings.HasSuffix(result.Result, "\n\n"+content))
}

func TestRead_GBKFile(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	gbk := []byte{0xC4, 0xE3, 0xBA, 0xC3} // 你好
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkingDirectory, "cn.txt"), gbk, 0644))

	result := ops.Read("cn.txt")
	require.NoError(t, result.Error)
	assert.Equal(t, "你好", result.Content)
	assert.Equal(t, "gbk", result.Encoding)
}

func TestRead_Failures(t *testing.T) {
	cfg := newTestConfigWith(t, func(s *config.PolicySpec) { s.MaxFileSizeBytes = 16 })
	ops := newTestFileOps(t, cfg)
	root := cfg.WorkingDirectory

	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), bytes.Repeat([]byte("x"), 17), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "prog.exe"), []byte("MZ"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.txt"), 0755))

	tests := []struct {
		name string
		path string
		kind failure.Kind
	}{
		{"traversal", "../secret.txt", failure.UnsafePath},
		{"disallowed extension", "prog.exe", failure.UnsupportedType},
		{"missing file", "missing.txt", failure.NotFound},
		{"oversized file", "big.txt", failure.TooLarge},
		{"directory", "dir.txt", failure.IOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ops.Read(tt.path)
			require.Error(t, result.Error)
			assert.ErrorIs(t, result.Error, tt.kind)
			assert.True(t, strings.HasPrefix(result.Text(), "Error: "+string(tt.kind)))
		})
	}
}

func TestRead_ExtensionCheckedBeforeExistence(t *testing.T) {
	ops := newTestFileOps(t, newTestConfig(t))

	result := ops.Read("missing.exe")
	assert.ErrorIs(t, result.Error, failure.UnsupportedType)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ops := newTestFileOps(t, newTestConfig(t))

	tests := []struct {
		name     string
		content  string
		encoding string
	}{
		{"ascii", "plain text\n", ""},
		{"utf-8", "naïve café ☕\n", "utf-8"},
		{"gbk", "你好，世界", "gbk"},
		{"empty", "", ""},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join("round", string(rune('a'+i))+".txt")

			w := ops.Write(WriteRequest{Path: path, Content: tt.content, Encoding: tt.encoding})
			require.NoError(t, w.Error)

			r := ops.Read(path)
			require.NoError(t, r.Error)
			assert.Equal(t, tt.content, r.Content)
		})
	}
}

func TestWrite_ActionAndParents(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	first := ops.Write(WriteRequest{Path: "a/b/c/notes.md", Content: "one"})
	require.NoError(t, first.Error)
	assert.Equal(t, "CREATED", first.Action)
	assert.Equal(t, int64(3), first.BytesWritten)
	assert.Contains(t, first.Result, "Action: CREATED")

	second := ops.Write(WriteRequest{Path: "a/b/c/notes.md", Content: "two!"})
	require.NoError(t, second.Error)
	assert.Equal(t, "UPDATED", second.Action)

	data, err := os.ReadFile(filepath.Join(cfg.WorkingDirectory, "a", "b", "c", "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "two!", string(data))
}

func TestWrite_Rejections(t *testing.T) {
	cfg := newTestConfigWith(t, func(s *config.PolicySpec) { s.MaxFileSizeBytes = 8 })
	ops := newTestFileOps(t, cfg)

	tests := []struct {
		name string
		req  WriteRequest
		kind failure.Kind
	}{
		{"traversal", WriteRequest{Path: "x/../../y.txt", Content: "a"}, failure.UnsafePath},
		{"extension", WriteRequest{Path: "run.so", Content: "a"}, failure.UnsupportedType},
		{"too large", WriteRequest{Path: "big.txt", Content: "123456789"}, failure.TooLarge},
		{"unknown encoding", WriteRequest{Path: "a.txt", Content: "a", Encoding: "klingon"}, failure.InvalidArgument},
		{"unencodable", WriteRequest{Path: "a.txt", Content: "☕", Encoding: "latin-1"}, failure.EncodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ops.Write(tt.req)
			assert.ErrorIs(t, result.Error, tt.kind)
		})
	}

	entries, err := os.ReadDir(cfg.WorkingDirectory)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected writes must not leave files behind")
}

func TestWrite_SizeCountsEncodedBytes(t *testing.T) {
	cfg := newTestConfigWith(t, func(s *config.PolicySpec) { s.MaxFileSizeBytes = 4 })
	ops := newTestFileOps(t, cfg)

	// Two characters, six bytes in UTF-8.
	result := ops.Write(WriteRequest{Path: "cn.txt", Content: "你好"})
	assert.ErrorIs(t, result.Error, failure.TooLarge)

	// Four bytes in GBK.
	result = ops.Write(WriteRequest{Path: "cn.txt", Content: "你好", Encoding: "gbk"})
	assert.NoError(t, result.Error)
}

func TestAppend(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	first := ops.Append(WriteRequest{Path: "log.log", Content: "line1\n"})
	require.NoError(t, first.Error)
	assert.Equal(t, "CREATED", first.Action)

	second := ops.Append(WriteRequest{Path: "log.log", Content: "line2\n"})
	require.NoError(t, second.Error)
	assert.Equal(t, "UPDATED", second.Action)
	assert.Contains(t, second.Result, "Successfully appended")

	data, err := os.ReadFile(filepath.Join(cfg.WorkingDirectory, "log.log"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(data))
}

func TestAppend_RejectsOverflowBeforeWriting(t *testing.T) {
	const limit = 64
	cfg := newTestConfigWith(t, func(s *config.PolicySpec) { s.MaxFileSizeBytes = limit })
	ops := newTestFileOps(t, cfg)

	path := filepath.Join(cfg.WorkingDirectory, "full.txt")
	original := bytes.Repeat([]byte("a"), limit-2)
	require.NoError(t, os.WriteFile(path, original, 0644))

	result := ops.Append(WriteRequest{Path: "full.txt", Content: "more"})
	assert.ErrorIs(t, result.Error, failure.TooLarge)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)

	result = ops.Append(WriteRequest{Path: "full.txt", Content: "ok"})
	assert.NoError(t, result.Error)
}

func TestList(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)
	root := cfg.WorkingDirectory

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), make([]byte, 1234), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.bin"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))

	result := ops.List(ListRequest{})
	require.NoError(t, result.Error)
	out := result.Result

	assert.Contains(t, out, "Contents of: "+root)
	assert.NotContains(t, out, ".hidden")
	assert.Contains(t, out, "1,234 bytes")

	a := strings.Index(out, "a.bin")
	b := strings.Index(out, "b.txt")
	sub := strings.Index(out, "sub")
	assert.True(t, a < b && b < sub, "entries must be sorted by name")

	assert.Regexp(t, `DIR  sub\s+0 bytes`, out)
	assert.Regexp(t, `FILE a\.bin\s+1 bytes`, out)

	hidden := ops.List(ListRequest{Path: ".", ShowHidden: true})
	require.NoError(t, hidden.Error)
	assert.Contains(t, hidden.Result, ".hidden")
}

func TestList_EdgeCases(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)
	root := cfg.WorkingDirectory

	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), nil, 0644))

	empty := ops.List(ListRequest{Path: "empty"})
	require.NoError(t, empty.Error)
	assert.Contains(t, empty.Result, "Directory is empty")

	assert.ErrorIs(t, ops.List(ListRequest{Path: "nope"}).Error, failure.NotFound)
	assert.ErrorIs(t, ops.List(ListRequest{Path: "file.txt"}).Error, failure.IOFailure)
	assert.ErrorIs(t, ops.List(ListRequest{Path: "../"}).Error, failure.UnsafePath)
}

func TestList_IgnoresExtensionPolicy(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	require.NoError(t, os.Mkdir(filepath.Join(cfg.WorkingDirectory, "weird.exe"), 0755))
	assert.NoError(t, ops.List(ListRequest{Path: "weird.exe"}).Error)
	assert.NoError(t, ops.Info("weird.exe").Error)
	assert.NoError(t, ops.Mkdir("other.exe").Error)
}

func TestInfo(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)
	root := cfg.WorkingDirectory

	require.NoError(t, os.WriteFile(filepath.Join(root, "data.json"), []byte(`{"a": 1}`), 0644))

	result := ops.Info("data.json")
	require.NoError(t, result.Error)
	out := result.Result
	assert.Contains(t, out, "Name: data.json")
	assert.Contains(t, out, "Type: File")
	assert.Contains(t, out, "Size: 8 bytes")
	assert.Contains(t, out, "Extension: .json")
	assert.Contains(t, out, "Readable: true")
	assert.Contains(t, out, "Created: ")
	assert.Contains(t, out, "Modified: ")
	assert.Contains(t, out, "Accessed: ")
	assert.Contains(t, out, "MIME Type: application/json")

	dir := ops.Info(".")
	require.NoError(t, dir.Error)
	assert.Contains(t, dir.Result, "Type: Directory")
	assert.Contains(t, dir.Result, "Size: N/A (directory)")
	assert.NotContains(t, dir.Result, "Extension:")

	assert.ErrorIs(t, ops.Info("missing").Error, failure.NotFound)
	assert.ErrorIs(t, ops.Info("../etc").Error, failure.UnsafePath)
}

func TestMkdir_Idempotent(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	first := ops.Mkdir("x/y/z")
	require.NoError(t, first.Error)
	second := ops.Mkdir("x/y/z")
	require.NoError(t, second.Error)

	info, err := os.Stat(filepath.Join(cfg.WorkingDirectory, "x", "y", "z"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.ErrorIs(t, ops.Mkdir("x/../../y").Error, failure.UnsafePath)
}

func TestMkdir_OverFile(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkingDirectory, "f.txt"), nil, 0644))

	assert.ErrorIs(t, ops.Mkdir("f.txt").Error, failure.IOFailure)
}

func TestCurrentDirectory(t *testing.T) {
	cfg := newTestConfig(t)
	ops := newTestFileOps(t, cfg)

	result := ops.CurrentDirectory()
	require.NoError(t, result.Error)
	assert.Equal(t, "Current working directory: "+cfg.WorkingDirectory, result.Result)
}
