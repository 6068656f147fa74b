package session

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileAudit appends one pipe-separated line per entry:
// timestamp|session:ID|command|argument|status|message
type FileAudit struct {
	mu     sync.Mutex
	logger *log.Logger
	file   *os.File
}

// NewFileAudit opens (or creates) the audit log at logPath.
func NewFileAudit(logPath string) (*FileAudit, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("could not create audit log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open audit log: %w", err)
	}

	return &FileAudit{
		logger: log.New(file, "", 0),
		file:   file,
	}, nil
}

// Record writes an audit log entry
func (a *FileAudit) Record(e Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return fmt.Errorf("audit log is closed")
	}

	return a.logger.Output(2, e.String())
}

// Close closes the audit log file
func (a *FileAudit) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
