package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPingCmd creates the 'ping' command.
func newPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Wait until the pipeline server is reachable",
		Long: `Probe the server's index page, retrying with backoff while the
server is starting. The number of retries is set by probe_retries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			if err := client.Ping(GetContext()); err != nil {
				GetLogger().Error().Err(err).Str("server", client.BaseURL()).Msg("server not reachable")
				return fmt.Errorf("server %s not reachable: %w", client.BaseURL(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is up\n", client.BaseURL())
			return nil
		},
	}

	return cmd
}
