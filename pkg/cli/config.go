package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

func init() {
	configureViper()
}

// configureViper installs defaults, config file discovery and the
// environment mapping on the global viper instance.
func configureViper() {
	// Set all default values in Viper
	config.SetViperDefaults()

	// Set default config file name
	viper.SetConfigName(config.ConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	// FSGATE_MAX_FILE_SIZE and friends
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
		// Config file not found; using defaults and flags
	}
}

// buildConfig constructs a config.Config from Viper values
func buildConfig() (*config.Config, error) {
	policy, err := config.NewPolicy(config.PolicySpecFromViper(viper.GetViper()))
	if err != nil {
		return nil, err
	}

	root, err := resolveRoot(viper.GetString(config.KeyRoot))
	if err != nil {
		return nil, err
	}

	rate := viper.GetInt(config.KeyRateLimit)
	if rate < 0 {
		return nil, fmt.Errorf("invalid %s: %d", config.KeyRateLimit, rate)
	}

	return &config.Config{
		Policy:             policy,
		WorkingDirectory:   root,
		SearchBinary:       viper.GetString(config.KeySearchBinary),
		RateLimitPerMinute: rate,
		AuditLogPath:       viper.GetString(config.KeyAuditLog),
		AuditDBPath:        viper.GetString(config.KeyAuditDB),
		MetricsAddr:        viper.GetString(config.KeyMetricsAddr),
		Logging: config.LoggingConfig{
			Level:       viper.GetString(config.KeyLogLevel),
			Development: viper.GetBool(config.KeyLogDev),
		},
	}, nil
}

func resolveRoot(raw string) (string, error) {
	if raw == "" {
		raw = "."
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", fmt.Errorf("cannot expand root %q: %w", raw, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("cannot resolve root %q: %w", raw, err)
	}
	return abs, nil
}
