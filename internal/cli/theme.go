package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/theme"
)

// printIndicator prints the theme each time the store shows one.
type printIndicator struct{ out io.Writer }

func (p printIndicator) ShowTheme(t models.Theme, icon string) {
	fmt.Fprintf(p.out, "%s %s\n", icon, t)
}

// newThemeCmd creates the 'theme' command group.
func newThemeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the light/dark theme",
		Long: `Show or change the theme preference.

Without a subcommand the active theme is printed. The preference is
stored in preferences.toml in the config directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := openThemeStore(cmd.OutOrStdout())
			return err
		},
	}

	themeCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openThemeStore(io.Discard)
			if err != nil {
				return err
			}
			t := store.Toggle()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Icon(), t)
			return nil
		},
	})

	themeCmd.AddCommand(&cobra.Command{
		Use:       "set light|dark",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.ThemeLight), string(models.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseTheme(args[0])
			if err != nil {
				return err
			}
			store, err := openThemeStore(io.Discard)
			if err != nil {
				return err
			}
			store.Set(t)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Icon(), t)
			return nil
		},
	})

	return themeCmd
}

// openThemeStore resolves the theme, printing it to out.
func openThemeStore(out io.Writer) (*theme.Store, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	prefs := theme.NewTOMLFile(config.PreferencesFile(cfg))
	GetLogger().Debug().Str("path", prefs.Path()).Msg("theme preference file")
	return theme.NewStore(prefs, theme.PlatformDarkSignal, printIndicator{out: out}, GetLogger()), nil
}
