// Package engine orchestrates the render pipeline: HTML bytes plus a
// viewport in, Spatial DOM out. Each Parse call is self-contained, so one
// Engine may serve concurrent callers.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/layout"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
	"github.com/browsyhq/browsy-core/internal/browser/style"
	"github.com/browsyhq/browsy-core/internal/config"
	"github.com/browsyhq/browsy-core/internal/intel"
	"github.com/browsyhq/browsy-core/internal/spatial"
)

// Viewport is the device-independent pixel size a document renders into.
type Viewport struct {
	Width  int
	Height int
}

// Engine runs the parse pipeline with a fixed configuration.
type Engine struct {
	cfg    config.Interface
	logger *zap.Logger
}

func New(cfg config.Interface, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger.Named("engine")}
}

// Parse renders the document into a Spatial DOM. Extra stylesheets the
// caller has fetched (linked CSS) are applied after the document's own
// style blocks. The pipeline itself never fails on malformed markup; only
// input reading and cancellation surface as errors.
func (e *Engine) Parse(ctx context.Context, html []byte, vp Viewport, baseURL string, extraCSS ...string) (*schemas.SpatialDOM, error) {
	doc, err := dom.ParseBytes(html)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vpW, vpH := float64(vp.Width), float64(vp.Height)

	styleEngine := style.NewEngine()
	styleEngine.SetViewport(vpW, vpH)
	for _, css := range doc.Styles {
		styleEngine.AddAuthorSheet(parser.NewParser(css).Parse())
	}
	for _, css := range extraCSS {
		styleEngine.AddAuthorSheet(parser.NewParser(css).Parse())
	}
	styled := styleEngine.BuildTree(doc.Root, nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layoutEngine := layout.NewEngine(vpW, vpH)
	boxTree := layoutEngine.BuildAndLayoutTree(styled)
	bounds := layout.CollectBounds(boxTree)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gen := spatial.NewGenerator(vpW, vpH, baseURL)
	sd := &schemas.SpatialDOM{
		URL:    baseURL,
		Title:  doc.Title(),
		VP:     [2]float64{vpW, vpH},
		Scroll: [2]float64{0, 0},
		Els:    gen.Generate(styled, bounds),
	}
	sd.RebuildIndex()

	captcha := intel.DetectCaptcha(doc.Root)
	pageType := intel.Classify(sd, captcha)
	if pageType != schemas.PageOther {
		sd.PageType = pageType
	}
	sd.SuggestedActions = intel.DetectActions(sd, pageType, captcha)
	sd.Captcha = captcha

	e.logger.Debug("parsed document",
		zap.String("url", baseURL),
		zap.Int("elements", len(sd.Els)),
		zap.String("page_type", string(pageType)),
		zap.Int("actions", len(sd.SuggestedActions)),
	)
	return sd, nil
}

// Diff is the content-identity delta between two snapshots.
func (e *Engine) Diff(prev, next *schemas.SpatialDOM) *schemas.DeltaDOM {
	return spatial.Diff(prev, next)
}
