// File: cmd/render.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/engine"
	"github.com/browsyhq/browsy-core/internal/observability"
	"github.com/browsyhq/browsy-core/internal/spatial"
	jsoniter "github.com/json-iterator/go"
)

var renderFlags struct {
	width     int
	height    int
	baseURL   string
	format    string
	aboveFold bool
	cssFiles  []string
}

var renderCmd = &cobra.Command{
	Use:   "render [file ... | -]",
	Short: "Render HTML files (or stdin) into a Spatial DOM",
	Long: `Render runs the full pipeline over each input: parse, style, layout,
spatial generation and page intelligence. Multiple files fan out across a
bounded worker group; results print in input order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVar(&renderFlags.width, "width", 0, "viewport width (overrides config)")
	renderCmd.Flags().IntVar(&renderFlags.height, "height", 0, "viewport height (overrides config)")
	renderCmd.Flags().StringVar(&renderFlags.baseURL, "url", "", "document URL for href resolution")
	renderCmd.Flags().StringVar(&renderFlags.format, "format", "", "output format: compact or json")
	renderCmd.Flags().BoolVar(&renderFlags.aboveFold, "above-fold", false, "emit only above-fold elements")
	renderCmd.Flags().StringSliceVar(&renderFlags.cssFiles, "css", nil, "extra stylesheet files applied after document styles")
	rootCmd.AddCommand(renderCmd)
}

func applyRenderFlags() {
	if renderFlags.width > 0 {
		appConfig.SetRenderViewportWidth(renderFlags.width)
	}
	if renderFlags.height > 0 {
		appConfig.SetRenderViewportHeight(renderFlags.height)
	}
	if renderFlags.baseURL != "" {
		appConfig.SetRenderBaseURL(renderFlags.baseURL)
	}
	if renderFlags.format != "" {
		appConfig.SetOutputFormat(renderFlags.format)
	}
	if renderFlags.aboveFold {
		appConfig.SetOutputAboveFoldOnly(true)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	applyRenderFlags()
	logger := observability.GetLogger()

	extraCSS, err := readStylesheets(append(appConfig.Render().Stylesheets, renderFlags.cssFiles...))
	if err != nil {
		return err
	}

	eng := engine.New(appConfig, logger)
	vp := engine.Viewport{
		Width:  appConfig.Render().ViewportWidth,
		Height: appConfig.Render().ViewportHeight,
	}

	type result struct {
		index  int
		name   string
		output string
	}

	var (
		mu      sync.Mutex
		results []result
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(appConfig.Render().Concurrency)

	for i, name := range args {
		i, name := i, name
		g.Go(func() error {
			html, err := readInput(name)
			if err != nil {
				return err
			}
			sd, err := eng.Parse(ctx, html, vp, appConfig.Render().BaseURL, extraCSS...)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", name, err)
			}
			out, err := formatOutput(sd)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result{index: i, name: name, output: out})
			mu.Unlock()
			logger.Debug("rendered input", zap.String("input", name), zap.Int("elements", len(sd.Els)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", r.name)
		}
		fmt.Fprint(cmd.OutOrStdout(), r.output)
	}
	return nil
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return b, nil
}

func readStylesheets(paths []string) ([]string, error) {
	var sheets []string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading stylesheet %s: %w", p, err)
		}
		sheets = append(sheets, string(b))
	}
	return sheets, nil
}

func formatOutput(sd *schemas.SpatialDOM) (string, error) {
	if appConfig.Output().AboveFoldOnly {
		sd.FilterAboveFold()
	}
	switch appConfig.Output().Format {
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary
		var (
			b   []byte
			err error
		)
		if appConfig.Output().Pretty {
			b, err = enc.MarshalIndent(sd, "", "  ")
		} else {
			b, err = enc.Marshal(sd)
		}
		if err != nil {
			return "", fmt.Errorf("encoding output: %w", err)
		}
		return string(b) + "\n", nil
	default:
		return spatial.ToCompact(sd), nil
	}
}
