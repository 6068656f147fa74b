package config

import "time"

// Default values and limits for the gatekeeping layer
const (
	// File size limits
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB - read, write and append ceiling

	// Timeout values
	DefaultTimeoutSeconds = 30
	DefaultTimeout        = DefaultTimeoutSeconds * time.Second

	// Search configuration
	DefaultSearchBinary     = "rg"
	DefaultMaxSearchResults = 100

	// Validation limits
	MaxCommandLength = 8192 // Maximum length for runCommand strings
	MaxPathLength    = 4096 // Maximum path length

	// Sampling for the info report's charset hint
	CharsetSampleSize = 8 * 1024

	// Audit configuration
	DefaultAuditListLimit = 50

	// Config file discovery
	ConfigName = "llm-fsgate.config"
	EnvPrefix  = "FSGATE"
)

// DefaultAllowedExtensions lists the suffixes read/write/append accept.
func DefaultAllowedExtensions() []string {
	return []string{
		".txt", ".py", ".java", ".js", ".json", ".md", ".csv", ".log", ".yaml", ".yml",
		".xml", ".html", ".css", ".sh", ".bat", ".clj", ".edn", ".cljs", ".cljc", ".dump",
	}
}

// DefaultBlockedCommands lists program names runCommand refuses.
func DefaultBlockedCommands() []string {
	return []string{"rm", "del", "format", "mkfs", "dd", "shutdown", "reboot", "halt", "poweroff"}
}

// DefaultEncodings is the decode priority for read.
func DefaultEncodings() []string {
	return []string{"utf-8", "gbk", "gb2312", "latin-1", "cp1252"}
}
