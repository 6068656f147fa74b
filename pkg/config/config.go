package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/computerscienceiscool/llm-fsgate/pkg/textcodec"
)

// Policy is the process-wide gatekeeping configuration. It is built once by
// NewPolicy and never mutated afterwards, so guards may share it freely.
type Policy struct {
	allowedExtensions map[string]struct{}
	blockedCommands   map[string]struct{}
	encodings         []string
	maxFileSize       int64
	defaultTimeout    time.Duration
}

// PolicySpec carries the raw, user-facing policy values.
type PolicySpec struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileSizeBytes  int64    `yaml:"max_file_size_bytes"`
	BlockedCommands   []string `yaml:"blocked_commands"`
	EncodingPriority  []string `yaml:"encoding_priority"`
	TimeoutSeconds    int      `yaml:"default_timeout_seconds"`
}

// DefaultPolicySpec returns the built-in policy values.
func DefaultPolicySpec() PolicySpec {
	return PolicySpec{
		AllowedExtensions: DefaultAllowedExtensions(),
		MaxFileSizeBytes:  DefaultMaxFileSize,
		BlockedCommands:   DefaultBlockedCommands(),
		EncodingPriority:  DefaultEncodings(),
		TimeoutSeconds:    DefaultTimeoutSeconds,
	}
}

// NewPolicy lowercases and validates spec.
func NewPolicy(spec PolicySpec) (*Policy, error) {
	p := &Policy{
		allowedExtensions: make(map[string]struct{}),
		blockedCommands:   make(map[string]struct{}),
		maxFileSize:       spec.MaxFileSizeBytes,
		defaultTimeout:    time.Duration(spec.TimeoutSeconds) * time.Second,
	}

	for _, ext := range spec.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.allowedExtensions[ext] = struct{}{}
	}
	if len(p.allowedExtensions) == 0 {
		return nil, fmt.Errorf("allowed extensions must not be empty")
	}

	for _, name := range spec.BlockedCommands {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			p.blockedCommands[name] = struct{}{}
		}
	}
	if len(p.blockedCommands) == 0 {
		return nil, fmt.Errorf("blocked commands must not be empty")
	}

	seen := make(map[string]bool)
	for _, name := range spec.EncodingPriority {
		canonical, _, err := textcodec.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("invalid encoding priority: %w", err)
		}
		if !seen[canonical] {
			seen[canonical] = true
			p.encodings = append(p.encodings, canonical)
		}
	}
	if len(p.encodings) == 0 {
		return nil, fmt.Errorf("encoding priority must not be empty")
	}

	if p.maxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive, got %d", spec.MaxFileSizeBytes)
	}
	if p.defaultTimeout <= 0 {
		return nil, fmt.Errorf("default timeout must be positive, got %d", spec.TimeoutSeconds)
	}

	return p, nil
}

// MustDefaultPolicy returns the built-in policy.
func MustDefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultPolicySpec())
	if err != nil {
		panic(err)
	}
	return p
}

// ExtensionAllowed reports whether ext (lowercase, with dot) is allowed.
func (p *Policy) ExtensionAllowed(ext string) bool {
	_, ok := p.allowedExtensions[ext]
	return ok
}

// CommandBlocked reports whether token (lowercase) is denylisted.
func (p *Policy) CommandBlocked(token string) bool {
	_, ok := p.blockedCommands[token]
	return ok
}

func (p *Policy) MaxFileSize() int64 { return p.maxFileSize }

func (p *Policy) DefaultTimeout() time.Duration { return p.defaultTimeout }

// Encodings returns a copy of the decode priority.
func (p *Policy) Encodings() []string {
	return append([]string(nil), p.encodings...)
}

// Spec renders the policy back into its normalized, sorted raw form.
func (p *Policy) Spec() PolicySpec {
	return PolicySpec{
		AllowedExtensions: sortedKeys(p.allowedExtensions),
		MaxFileSizeBytes:  p.maxFileSize,
		BlockedCommands:   sortedKeys(p.blockedCommands),
		EncodingPriority:  p.Encodings(),
		TimeoutSeconds:    int(p.defaultTimeout / time.Second),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoggingConfig selects the zap logger setup.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config holds everything the application needs at startup.
type Config struct {
	Policy *Policy `yaml:"-"`

	// WorkingDirectory anchors relative paths and is what currentDirectory reports.
	WorkingDirectory   string        `yaml:"root"`
	SearchBinary       string        `yaml:"search_binary"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	AuditLogPath       string        `yaml:"audit_log"`
	AuditDBPath        string        `yaml:"audit_db"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	Logging            LoggingConfig `yaml:"logging"`
}
