package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/sandbox"
	"github.com/computerscienceiscool/llm-fsgate/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runPolicy,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent entries from the SQLite audit database",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate paths or commands against the policy without running anything",
}

var checkPathCmd = &cobra.Command{
	Use:   "path <path>...",
	Short: "Show how each path resolves and whether file tools accept it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckPath,
}

var checkCommandCmd = &cobra.Command{
	Use:   "command [flags] <command>...",
	Short: "Show whether runCommand would accept a command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckCommand,
}

func init() {
	auditCmd.Flags().String("session", "", "Only show entries from this session ID")
	auditCmd.Flags().Int("limit", config.DefaultAuditListLimit, "Maximum number of entries")

	// Everything after the first word belongs to the command under test,
	// so "check command rm -rf /" needs no quoting.
	checkCommandCmd.Flags().SetInterspersed(false)

	checkCmd.AddCommand(checkPathCmd, checkCommandCmd)
}

// effectiveConfig is what the policy command prints.
type effectiveConfig struct {
	Policy   config.PolicySpec `yaml:"policy"`
	Settings config.Config     `yaml:",inline"`
}

func runPolicy(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(effectiveConfig{Policy: cfg.Policy.Spec(), Settings: *cfg}); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func runAudit(cmd *cobra.Command, _ []string) error {
	dbPath := viper.GetString(config.KeyAuditDB)
	if dbPath == "" {
		return fmt.Errorf("no audit database configured (set --%s)", config.KeyAuditDB)
	}
	// Opening would create an empty database.
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("cannot open audit database: %w", err)
	}

	sessionID, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	db, err := session.OpenSQLiteAudit(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.Recent(sessionID, limit)
	if err != nil {
		return fmt.Errorf("failed to query audit log: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No audit entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(out, e.String())
	}
	return nil
}

func runCheckPath(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	guard := sandbox.NewPathGuard(cfg.WorkingDirectory)
	exts := sandbox.NewExtensionPolicy(cfg.Policy)
	out := cmd.OutOrStdout()

	denied := 0
	for _, raw := range args {
		req := guard.Inspect(raw)
		if !req.Valid {
			denied++
			fmt.Fprintf(out, "DENY  %s: %s\n", raw, req.Reason)
			continue
		}
		fmt.Fprintf(out, "ALLOW %s -> %s\n", raw, req.Resolved)
		if err := exts.Check(req.Resolved); err != nil {
			fmt.Fprintf(out, "      read/write/append refuse it: %v\n", err)
		}
	}

	if denied > 0 {
		return fmt.Errorf("%d of %d paths denied", denied, len(args))
	}
	return nil
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	command := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if err := sandbox.NewCommandPolicy(cfg.Policy).Check(command); err != nil {
		fmt.Fprintf(out, "DENY  %s: %v\n", command, err)
		return fmt.Errorf("command denied")
	}
	fmt.Fprintf(out, "ALLOW %s\n", command)
	return nil
}
