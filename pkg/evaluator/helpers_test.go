package evaluator

import (
	"sync"
	"testing"
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/stretchr/testify/require"
)

// testAuditLog is a helper to capture audit log calls during tests
type testAuditLog struct {
	mu      sync.Mutex
	entries []auditEntry
}

type auditEntry struct {
	cmdType string
	arg     string
	success bool
	errMsg  string
}

func (t *testAuditLog) log(cmdType, arg string, success bool, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, auditEntry{cmdType, arg, success, errMsg})
}

func (t *testAuditLog) getEntries() []auditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]auditEntry{}, t.entries...)
}

// newTestConfig creates a config rooted at a fresh temp directory.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Policy:           config.MustDefaultPolicy(),
		WorkingDirectory: t.TempDir(),
		SearchBinary:     config.DefaultSearchBinary,
	}
}

// newTestConfigWith applies edit to the default policy spec.
func newTestConfigWith(t *testing.T, edit func(*config.PolicySpec)) *config.Config {
	t.Helper()
	spec := config.DefaultPolicySpec()
	edit(&spec)
	policy, err := config.NewPolicy(spec)
	require.NoError(t, err)

	cfg := newTestConfig(t)
	cfg.Policy = policy
	return cfg
}

func newTestFileOps(t *testing.T, cfg *config.Config) *FileOps {
	t.Helper()
	ops, err := NewFileOps(cfg)
	require.NoError(t, err)
	return ops
}

type recordedObservation struct {
	op, outcome string
	duration    time.Duration
}

type testRecorder struct {
	mu   sync.Mutex
	seen []recordedObservation
}

func (r *testRecorder) Observe(op, outcome string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedObservation{op, outcome, d})
}
