package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/config"
	"github.com/foldlab/foldpipe/internal/console"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/progress"
	"github.com/foldlab/foldpipe/internal/theme"
)

// getAPIClient loads configuration and creates an API client.
func getAPIClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, cfg, nil
}

// newTerminalSession builds a controller driving a terminal on out.
// quiet suppresses all human-readable output.
func newTerminalSession(out io.Writer, quiet bool) (*console.Controller, error) {
	client, cfg, err := getAPIClient()
	if err != nil {
		return nil, err
	}

	term := newTerminal(out, quiet)
	reporter := func(models.Slot) progress.Reporter {
		if quiet || !progress.IsTerminal(os.Stderr) {
			return nil
		}
		return progress.NewCLIProgress(os.Stderr)
	}

	return console.New(console.Options{
		Uploader:   client,
		Poster:     client,
		Persister:  theme.NewTOMLFile(config.PreferencesFile(cfg)),
		DarkSignal: theme.PlatformDarkSignal,
		Reporter:   reporter,
		Logger:     GetLogger(),
	}, term.bindings()), nil
}
