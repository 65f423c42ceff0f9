// Package pipeline runs the parse → layout and validate stages over one
// document, with caching, for both the CLI and the HTTP API.
//
// # Architecture
//
// An analysis has two independent branches that share only the input text:
//
//  1. Parse the document into a graph, then lay the graph out.
//  2. Validate the document into a report.
//
// [Runner.Analyze] runs both branches concurrently and merges them. Each
// stage result and the merged analysis are cached under keys derived from
// the document hash and the options that influence the result, so
// repeating an analysis is a cache read.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Analyze(ctx, text, pipeline.Options{Direction: "TB"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Report.IsValid, len(res.Layout.Nodes))
//
// Run individual stages:
//
//	g, _, err := runner.ParseWithCacheInfo(ctx, text, opts)
//	l, _, err := runner.LayoutWithCacheInfo(ctx, g, opts)
//	r, _, err := runner.ValidateWithCacheInfo(ctx, text, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composeviz/pkg/cache"
	"github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/graph"
	"github.com/matzehuels/composeviz/pkg/layout"
	"github.com/matzehuels/composeviz/pkg/validate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDirection is the rank direction when none is given.
	DefaultDirection = graph.DirectionLR

	// DefaultEngine is the layout engine when none is given.
	DefaultEngine = layout.EngineSugiyama

	// DefaultDangling is the dangling-reference policy when none is given.
	DefaultDangling = "drop"
)

// Directions lists the accepted direction values.
var Directions = []string{string(graph.DirectionLR), string(graph.DirectionTB)}

// DanglingPolicies lists the accepted dangling-policy values.
var DanglingPolicies = []string{"drop", "keep", "stub"}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures an analysis. It supports JSON for API requests.
type Options struct {
	Direction string  `json:"direction,omitempty"`
	Engine    string  `json:"engine,omitempty"`
	Dangling  string  `json:"dangling,omitempty"`
	RankSep   float64 `json:"rank_sep,omitempty"`
	NodeSep   float64 `json:"node_sep,omitempty"`
	EdgeSep   float64 `json:"edge_sep,omitempty"`
	Passes    int     `json:"passes,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is a complete analysis of one document.
type Result struct {
	// DocHash is the SHA-256 of the document text.
	DocHash string `json:"doc_hash"`

	// Outcome tells whether the text decoded, was empty, or was malformed.
	Outcome string `json:"outcome"`

	Graph  graph.Graph     `json:"graph"`
	Layout graph.Layout    `json:"layout"`
	Report validate.Report `json:"report"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int           `json:"node_count"`
	EdgeCount    int           `json:"edge_count"`
	IssueCount   int           `json:"issue_count"`
	ParseTime    time.Duration `json:"parse_ns"`
	LayoutTime   time.Duration `json:"layout_ns"`
	ValidateTime time.Duration `json:"validate_ns"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool `json:"analysis_hit"` // whole result came from cache
	ParseHit    bool `json:"parse_hit"`
	LayoutHit   bool `json:"layout_hit"`
	ValidateHit bool `json:"validate_hit"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults normalizes option values and rejects unknown ones
// with coded errors. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	dir, err := graph.ParseDirection(o.Direction)
	if err != nil {
		return errors.ValidateChoice(errors.ErrCodeInvalidDirection, "direction", o.Direction, Directions)
	}
	o.Direction = string(dir)

	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if err := errors.ValidateChoice(errors.ErrCodeInvalidEngine, "engine", o.Engine, layout.Engines()); err != nil {
		return err
	}
	o.Engine = strings.ToLower(o.Engine)

	if o.Dangling == "" {
		o.Dangling = DefaultDangling
	}
	if _, ok := graph.ParseDanglingPolicy(o.Dangling); !ok {
		return errors.ValidateChoice(errors.ErrCodeInvalidDangling, "dangling policy", o.Dangling, DanglingPolicies)
	}
	o.Dangling = strings.ToLower(o.Dangling)

	if o.RankSep < 0 || o.NodeSep < 0 || o.EdgeSep < 0 || o.Passes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing and passes must not be negative")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// GraphOptions returns the graph construction options.
func (o *Options) GraphOptions() graph.Options {
	p, _ := graph.ParseDanglingPolicy(o.Dangling)
	return graph.Options{Dangling: p}
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		RankSep: o.RankSep,
		NodeSep: o.NodeSep,
		EdgeSep: o.EdgeSep,
		Passes:  o.Passes,
	}
}

// GraphKeyOpts returns cache key options for graph construction.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Dangling: o.Dangling}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction: o.Direction,
		Engine:    o.Engine,
		Dangling:  o.Dangling,
		RankSep:   o.RankSep,
		NodeSep:   o.NodeSep,
		EdgeSep:   o.EdgeSep,
		Passes:    o.Passes,
	}
}
