// Package session identifies one server run and fans its audit trail out
// to the configured sinks.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one audited operation.
type Entry struct {
	ID        int64
	Timestamp time.Time
	SessionID string
	Command   string
	Argument  string
	Success   bool
	Message   string
}

// Status is the word written to text logs.
func (e Entry) Status() string {
	if e.Success {
		return "success"
	}
	return "failed"
}

// String renders e as one audit log line:
// timestamp|session:ID|command|argument|status|message
func (e Entry) String() string {
	return fmt.Sprintf("%s|session:%s|%s|%s|%s|%s",
		e.Timestamp.Format(time.RFC3339),
		e.SessionID,
		e.Command,
		e.Argument,
		e.Status(),
		e.Message,
	)
}

// AuditSink persists audit entries.
type AuditSink interface {
	Record(entry Entry) error
	Close() error
}

// Session manages a tool execution session
type Session struct {
	ID        string
	StartTime time.Time

	sinks  []AuditSink
	logger *zap.Logger
}

// NewSession creates a new execution session. A sink that fails to record is
// logged and skipped; auditing never fails an operation.
func NewSession(logger *zap.Logger, sinks ...AuditSink) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		sinks:     sinks,
		logger:    logger,
	}
}

// LogAudit writes an audit log entry
func (s *Session) LogAudit(command, argument string, success bool, errorMsg string) {
	entry := Entry{
		Timestamp: time.Now(),
		SessionID: s.ID,
		Command:   command,
		Argument:  argument,
		Success:   success,
		Message:   errorMsg,
	}
	for _, sink := range s.sinks {
		if err := sink.Record(entry); err != nil {
			s.logger.Warn("audit sink failed", zap.String("op", command), zap.Error(err))
		}
	}
}

// Close closes every sink.
func (s *Session) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}
