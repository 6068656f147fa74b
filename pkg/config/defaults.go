package config

import (
	"github.com/spf13/viper"
)

// Viper keys shared by flags, the config file and FSGATE_* environment variables.
const (
	KeyRoot              = "root"
	KeyAllowedExtensions = "allowed-extensions"
	KeyMaxFileSize       = "max-file-size"
	KeyBlockedCommands   = "blocked-commands"
	KeyEncodings         = "encodings"
	KeyTimeout           = "timeout"
	KeySearchBinary      = "search-binary"
	KeyRateLimit         = "rate-limit"
	KeyAuditLog          = "audit-log"
	KeyAuditDB           = "audit-db"
	KeyMetricsAddr       = "metrics-addr"
	KeyLogLevel          = "log-level"
	KeyLogDev            = "log-dev"
)

// SetViperDefaults sets all default configuration values in Viper
func SetViperDefaults() {
	// Filesystem policy
	viper.SetDefault(KeyRoot, ".")
	viper.SetDefault(KeyAllowedExtensions, DefaultAllowedExtensions())
	viper.SetDefault(KeyMaxFileSize, DefaultMaxFileSize)
	viper.SetDefault(KeyEncodings, DefaultEncodings())

	// Command policy
	viper.SetDefault(KeyBlockedCommands, DefaultBlockedCommands())
	viper.SetDefault(KeyTimeout, DefaultTimeoutSeconds)

	// Search
	viper.SetDefault(KeySearchBinary, DefaultSearchBinary)

	// Security
	viper.SetDefault(KeyRateLimit, 0)
	viper.SetDefault(KeyAuditLog, "")
	viper.SetDefault(KeyAuditDB, "")

	// Observability
	viper.SetDefault(KeyMetricsAddr, "")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogDev, false)
}

// PolicySpecFromViper reads the policy section from v.
func PolicySpecFromViper(v *viper.Viper) PolicySpec {
	return PolicySpec{
		AllowedExtensions: v.GetStringSlice(KeyAllowedExtensions),
		MaxFileSizeBytes:  v.GetInt64(KeyMaxFileSize),
		BlockedCommands:   v.GetStringSlice(KeyBlockedCommands),
		EncodingPriority:  v.GetStringSlice(KeyEncodings),
		TimeoutSeconds:    v.GetInt(KeyTimeout),
	}
}
