package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage foldpipe configuration",
		Long: `Configuration management commands for foldpipe.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for foldpipe.

Use --force to overwrite an existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg := promptConfig(newPrompter(cmd.InOrStdin(), out), out)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := config.SaveConfigCSV(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintf(out, "\n✓ Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Check the server with: foldpipe ping")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// promptConfig asks for every persisted setting.
func promptConfig(p *prompter, out io.Writer) *config.Config {
	cfg := config.Default()

	fmt.Fprintln(out, "foldpipe Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	cfg.ServerURL = p.String("Pipeline server URL", constants.DefaultServerURL)
	cfg.ProbeRetries = p.Int("Readiness probe retries", constants.ProbeRetries)

	fmt.Fprintln(out)
	if p.YesNo("Configure proxy?") {
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		cfg.ProxyMode = p.String("Proxy mode", "system")
		if cfg.ProxyMode != "no-proxy" {
			cfg.ProxyHost = p.String("Proxy host", "")
			cfg.ProxyPort = p.Int("Proxy port", 8080)
			if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
				cfg.ProxyUser = p.String("Proxy user", "")
				fmt.Fprintln(out, "  Set the password in FOLDPIPE_PROXY_PASSWORD; it is never written to disk.")
			}
			cfg.NoProxy = p.String("Hosts to bypass (comma-separated)", "localhost,127.0.0.1")
		}
	}

	cfg.MergeWithFlags("", "", "", 0)
	return cfg
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

Priority: flags > environment (FOLDPIPE_*, .env) > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.MergeWithFlags(serverURL, "", "", 0)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			for _, rec := range cfg.Records() {
				fmt.Fprintf(out, "  %-17s %s\n", rec[0]+":", rec[1])
			}
			if cfg.ProxyPassword != "" {
				fmt.Fprintln(out, "  proxy_password:   <set>")
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			fmt.Fprintf(out, "Theme preferences:  %s\n", config.PreferencesFile(cfg))
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath())
			return nil
		},
	}
}
