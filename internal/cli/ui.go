package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/console"
	"github.com/foldlab/foldpipe/internal/events"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/progress"
	"github.com/foldlab/foldpipe/internal/theme"
	"github.com/foldlab/foldpipe/internal/tui"
)

// newUICmd creates the 'ui' command.
func newUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal UI",
		Long: `Open the interactive terminal UI.

Type a file path into each slot and press Enter to upload it, then run
the pipeline with Ctrl+R. Ctrl+T switches the theme. Logs are written to
ui.log in the config directory while the UI is open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, err := tui.OpenLogFile(config.LogDirectory())
			if err != nil {
				return err
			}
			defer logFile.Close()

			// nothing may write to the terminal while the UI owns it
			uiLogger := logging.New(logFile)
			logger = uiLogger

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := api.NewClient(cfg, uiLogger)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			bus := events.NewEventBus(0)
			defer bus.Close()

			ctrl := console.New(console.Options{
				Uploader:   client,
				Poster:     client,
				Persister:  theme.NewTOMLFile(config.PreferencesFile(cfg)),
				DarkSignal: theme.PlatformDarkSignal,
				Reporter: func(slot models.Slot) progress.Reporter {
					return progress.NewEventProgress(bus, slot)
				},
				Bus:    bus,
				Logger: uiLogger,
			}, console.Bindings{})

			ctx := GetContext()
			uiLogger.Info().Str("server", cfg.ServerURL).Msg("ui started")
			return tui.Run(ctx, tui.NewModel(ctx, ctrl, uiLogger))
		},
	}

	return cmd
}
