package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	session_id TEXT NOT NULL,
	command TEXT NOT NULL,
	argument TEXT NOT NULL,
	success BOOLEAN NOT NULL,
	error_msg TEXT
);
CREATE INDEX IF NOT EXISTS idx_session ON audit_logs(session_id);
CREATE INDEX IF NOT EXISTS idx_timestamp ON audit_logs(timestamp);
`

// SQLiteAudit stores entries in the audit_logs table.
type SQLiteAudit struct {
	db *sql.DB
}

// OpenSQLiteAudit opens dbPath, creating the file and schema if needed.
func OpenSQLiteAudit(dbPath string) (*SQLiteAudit, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return &SQLiteAudit{db: db}, nil
}

// Record logs an audit event
func (d *SQLiteAudit) Record(e Entry) error {
	_, err := d.db.Exec(`
		INSERT INTO audit_logs (timestamp, session_id, command, argument, success, error_msg)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.SessionID, e.Command, e.Argument, e.Success, e.Message)
	return err
}

// Recent returns up to limit entries, newest first. An empty sessionID
// means every session.
func (d *SQLiteAudit) Recent(sessionID string, limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, session_id, command, argument, success, COALESCE(error_msg, '')
		FROM audit_logs
		WHERE ? = '' OR session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := d.db.Query(query, sessionID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.Command, &e.Argument, &e.Success, &e.Message); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (d *SQLiteAudit) Close() error {
	return d.db.Close()
}
