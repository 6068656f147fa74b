package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink for testing
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(e Entry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNewSession(t *testing.T) {
	a := NewSession(nil)
	b := NewSession(nil)

	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.StartTime.IsZero())
	assert.NoError(t, a.Close())
}

func TestLogAuditFansOut(t *testing.T) {
	first, second := &MockSink{}, &MockSink{}
	s := NewSession(nil, first, second)

	matches := mock.MatchedBy(func(e Entry) bool {
		return e.SessionID == s.ID && e.Command == "write" && e.Argument == "a.txt" && e.Success
	})
	first.On("Record", matches).Return(errors.New("disk full"))
	second.On("Record", matches).Return(nil)

	s.LogAudit("write", "a.txt", true, "bytes:2")

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestCloseJoinsErrors(t *testing.T) {
	ok, broken := &MockSink{}, &MockSink{}
	ok.On("Close").Return(nil)
	broken.On("Close").Return(errors.New("boom"))

	err := NewSession(nil, ok, broken).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	ok.AssertExpectations(t)
}

func TestFileAudit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "audit.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0755))
	require.NoError(t, os.WriteFile(logPath, []byte("previous log entry\n"), 0644))

	sink, err := NewFileAudit(logPath)
	require.NoError(t, err)
	s := NewSession(nil, sink)

	s.LogAudit("read", "a.txt", true, "encoding:utf-8")
	s.LogAudit("runCommand", "rm -rf /", false, "COMMAND_BLOCKED: command not allowed for security reasons: rm")
	require.NoError(t, s.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "previous log entry", lines[0])

	parts := strings.Split(lines[1], "|")
	require.Len(t, parts, 6)
	assert.Equal(t, "session:"+s.ID, parts[1])
	assert.Equal(t, []string{"read", "a.txt", "success", "encoding:utf-8"}, parts[2:])

	assert.Contains(t, lines[2], "|runCommand|rm -rf /|failed|COMMAND_BLOCKED")

	assert.Error(t, sink.Record(Entry{}), "closed sink must refuse entries")
}

func TestSQLiteAudit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "audit.db")
	store, err := OpenSQLiteAudit(dbPath)
	require.NoError(t, err)
	defer store.Close()

	one := NewSession(nil, store)
	two := NewSession(nil, store)
	one.LogAudit("read", "a.txt", true, "")
	one.LogAudit("write", "b.txt", false, "TOO_LARGE: content too large")
	two.LogAudit("mkdir", "d", true, "")

	all, err := store.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mkdir", all[0].Command, "newest first")

	mine, err := store.Recent(one.ID, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "write", mine[0].Command)
	assert.False(t, mine[0].Success)
	assert.Equal(t, "TOO_LARGE: content too large", mine[0].Message)
	assert.True(t, mine[1].Success)

	limited, err := store.Recent("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteAuditConcurrentWrites(t *testing.T) {
	store, err := OpenSQLiteAudit(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer store.Close()
	s := NewSession(nil, store)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.LogAudit("info", ".", true, "")
		}()
	}
	wg.Wait()

	entries, err := store.Recent(s.ID, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 25)
}
