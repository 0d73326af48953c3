// File: cmd/diff.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/engine"
	"github.com/browsyhq/browsy-core/internal/observability"
	"github.com/browsyhq/browsy-core/internal/spatial"
	"github.com/browsyhq/browsy-core/internal/store"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.html> <new.html>",
	Short: "Render two HTML files and print the compact delta between them",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().IntVar(&renderFlags.width, "width", 0, "viewport width (overrides config)")
	diffCmd.Flags().IntVar(&renderFlags.height, "height", 0, "viewport height (overrides config)")
	diffCmd.Flags().StringVar(&renderFlags.baseURL, "url", "", "document URL for href resolution")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	applyRenderFlags()
	logger := observability.GetLogger()

	eng := engine.New(appConfig, logger)
	snapshots := store.New(logger)
	session := snapshots.NewSession()
	vp := engine.Viewport{
		Width:  appConfig.Render().ViewportWidth,
		Height: appConfig.Render().ViewportHeight,
	}

	var prev *schemas.SpatialDOM
	for _, name := range args {
		html, err := readInput(name)
		if err != nil {
			return err
		}
		sd, err := eng.Parse(cmd.Context(), html, vp, appConfig.Render().BaseURL)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		// Put hands back the session's previous snapshot, which for the
		// second input is the rendered first one.
		if replaced := snapshots.Put(session, sd); replaced != nil {
			prev = replaced
		}
	}

	next, err := snapshots.Get(session)
	if err != nil {
		return err
	}

	delta := spatial.Diff(prev, next)
	fmt.Fprint(cmd.OutOrStdout(), spatial.ToCompactDelta(delta))
	return nil
}
