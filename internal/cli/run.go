package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/foldlab/foldpipe/internal/models"
)

// errRunFailed is returned when the pipeline finished in a non-success state.
var errRunFailed = errors.New("pipeline run did not succeed")

// newRunCmd creates the 'run' command.
func newRunCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline on the uploaded files",
		Long: `Trigger one pipeline run and show its result.

The run is aborted after 30 seconds. With --output json or yaml the run
snapshot is printed instead of the rendered result.

Examples:
  foldpipe run
  foldpipe run --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q (want text, json or yaml)", output)
			}

			ctrl, err := newTerminalSession(cmd.OutOrStdout(), output != "text")
			if err != nil {
				return err
			}

			run, err := ctrl.RunPipeline(GetContext())
			if err != nil {
				return err
			}

			if err := writeRun(cmd.OutOrStdout(), output, run); err != nil {
				return err
			}
			if run.State != models.RunSucceeded {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

// writeRun prints run in a machine-readable format. Text output has
// already been written by the terminal bindings.
func writeRun(w io.Writer, format string, run models.PipelineRun) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(run); err != nil {
			return err
		}
		return enc.Close()
	}
	return nil
}
