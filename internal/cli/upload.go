package cli

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/upload"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var ctPath, dotPath string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload the .ct and/or .dot input file",
		Long: `Upload pipeline input files to the server.

The structure file goes in the ct slot and must end in .ct; the
dot-bracket file goes in the dot slot and must end in .dot. Files with
the wrong extension are rejected without contacting the server. The two
uploads run concurrently.

Examples:
  foldpipe upload --ct report.ct --dot report.dot
  foldpipe upload --ct report.ct`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selections := map[models.Slot]string{}
			if ctPath != "" {
				selections[models.SlotPrimary] = ctPath
			}
			if dotPath != "" {
				selections[models.SlotSecondary] = dotPath
			}
			if len(selections) == 0 {
				return fmt.Errorf("nothing to upload: pass --ct and/or --dot")
			}

			ctrl, err := newTerminalSession(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}

			ctx := GetContext()
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				errs []error
			)
			for slot, path := range selections {
				wg.Add(1)
				go func(slot models.Slot, path string) {
					defer wg.Done()
					if _, err := ctrl.SelectFile(ctx, slot, upload.LocalFile(path)); err != nil {
						mu.Lock()
						errs = append(errs, fmt.Errorf("%s: %w", path, err))
						mu.Unlock()
					}
				}(slot, path)
			}
			wg.Wait()

			if len(errs) > 0 {
				GetLogger().Debug().Err(errors.Join(errs...)).Msg("upload failed")
				return fmt.Errorf("%d of %d uploads failed", len(errs), len(selections))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ctPath, "ct", "", "Structure file (.ct)")
	cmd.Flags().StringVar(&dotPath, "dot", "", "Dot-bracket file (.dot)")

	return cmd
}
