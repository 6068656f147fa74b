package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/computerscienceiscool/llm-fsgate/pkg/app"
	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time with -ldflags "-X .../pkg/cli.Version=...".
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "llm-fsgate",
	Short: "Policy-gated file and command tools for LLM clients",
	Long: `llm-fsgate exposes read, write, append, list, info, mkdir, runCommand,
search and currentDirectory as MCP tools over stdio. Every call passes through
path, extension, size, encoding and command checks before touching the host.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over MCP stdio (the default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./llm-fsgate.config.yaml or $HOME/llm-fsgate.config.yaml)")

	// Filesystem flags
	rootCmd.PersistentFlags().String(config.KeyRoot, ".", "Directory relative paths resolve against")
	rootCmd.PersistentFlags().StringSlice(config.KeyAllowedExtensions, config.DefaultAllowedExtensions(), "Comma-separated list of extensions read/write/append accept")
	rootCmd.PersistentFlags().Int64(config.KeyMaxFileSize, config.DefaultMaxFileSize, "Maximum file size in bytes")
	rootCmd.PersistentFlags().StringSlice(config.KeyEncodings, config.DefaultEncodings(), "Encodings tried by read, in priority order")

	// Command flags
	rootCmd.PersistentFlags().StringSlice(config.KeyBlockedCommands, config.DefaultBlockedCommands(), "Comma-separated list of programs runCommand refuses")
	rootCmd.PersistentFlags().Int(config.KeyTimeout, config.DefaultTimeoutSeconds, "Default command and search timeout in seconds")
	rootCmd.PersistentFlags().String(config.KeySearchBinary, config.DefaultSearchBinary, "ripgrep binary used by search")

	// Security flags
	rootCmd.PersistentFlags().Int(config.KeyRateLimit, 0, "Maximum operations per minute (0 disables)")
	rootCmd.PersistentFlags().String(config.KeyAuditLog, "", "Append audit entries to this text file")
	rootCmd.PersistentFlags().String(config.KeyAuditDB, "", "Record audit entries in this SQLite database")

	// Observability flags
	rootCmd.PersistentFlags().String(config.KeyMetricsAddr, "", "Serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool(config.KeyLogDev, false, "Human-readable console logs")

	// Bind flags to viper
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd, policyCmd, auditCmd, checkCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	a, err := app.Bootstrap(cfg, Version)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
