package pipeline

import (
	"context"

	"github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/graph"
	"github.com/matzehuels/composeviz/pkg/layout"
)

// ComputeLayout positions g with the engine and spacing in opts. Options
// must have passed [Options.ValidateAndSetDefaults].
func ComputeLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	engine, err := layout.New(opts.Engine, opts.LayoutOptions())
	if err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInvalidEngine, err, "select engine")
	}
	dir, err := graph.ParseDirection(opts.Direction)
	if err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInvalidDirection, err, "parse direction")
	}
	l, err := engine.Layout(ctx, g, dir)
	if err != nil {
		if ctx.Err() != nil {
			return graph.Layout{}, errors.Wrap(errors.ErrCodeTimeout, err, "%s layout cancelled", engine.Name())
		}
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "%s layout", engine.Name())
	}
	return l, nil
}
