package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/composeviz/pkg/cache"
	"github.com/matzehuels/composeviz/pkg/graph"
	"github.com/matzehuels/composeviz/pkg/observability"
	"github.com/matzehuels/composeviz/pkg/validate"
)

// Runner executes analyses with caching. It holds no per-analysis state, so
// one Runner serves concurrent requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL, when positive, replaces the per-kind cache lifetimes.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Parsed is a graph with the outcome of decoding its document.
type Parsed struct {
	Graph   graph.Graph `json:"graph"`
	Outcome string      `json:"outcome"`
}

// Analyze runs parse → layout and validate concurrently over text and
// merges the results. A cached analysis is returned as is, with
// CacheInfo.AnalysisHit set.
func (r *Runner) Analyze(ctx context.Context, text string, opts Options) (*Result, error) {
	res, _, err := r.AnalyzeWithCacheInfo(ctx, text, opts)
	return res, err
}

// AnalyzeWithCacheInfo is [Runner.Analyze] that also reports whether the
// whole analysis came from the cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, text string, opts Options) (*Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	docHash := cache.HashString(text)
	key := r.Keyer.AnalysisKey(docHash, opts.LayoutKeyOpts())

	compute := func() (*Result, error) { return r.analyze(ctx, text, docHash, opts) }
	res, hit, err := withCache(ctx, r, "analysis", key, cache.TTLAnalysis, opts.Refresh, compute)
	if err != nil {
		return nil, false, err
	}
	res.CacheInfo.AnalysisHit = hit

	observability.Pipeline().OnAnalysis(ctx, res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.IssueCount, res.Report.IsValid)
	r.Logger.Info("analysed document",
		"hash", docHash[:12],
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"issues", res.Stats.IssueCount,
		"valid", res.Report.IsValid,
		"cached", hit)
	return res, hit, nil
}

func (r *Runner) analyze(ctx context.Context, text, docHash string, opts Options) (*Result, error) {
	res := &Result{DocHash: docHash}
	eg, egCtx := errgroup.WithContext(ctx)

	// The branches write disjoint fields of res.
	eg.Go(func() error {
		start := time.Now()
		parsed, hit, err := r.ParseWithCacheInfo(egCtx, text, opts)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		res.Graph = parsed.Graph
		res.Outcome = parsed.Outcome
		res.Stats.ParseTime = time.Since(start)
		res.Stats.NodeCount = parsed.Graph.NodeCount()
		res.Stats.EdgeCount = parsed.Graph.EdgeCount()
		res.CacheInfo.ParseHit = hit

		start = time.Now()
		l, hit, err := r.LayoutWithCacheInfo(egCtx, parsed.Graph, opts)
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		res.Layout = l
		res.Stats.LayoutTime = time.Since(start)
		res.CacheInfo.LayoutHit = hit
		return nil
	})
	eg.Go(func() error {
		start := time.Now()
		report, hit, err := r.ValidateWithCacheInfo(egCtx, text, opts)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		res.Report = report
		res.Stats.ValidateTime = time.Since(start)
		res.Stats.IssueCount = len(report.All())
		res.CacheInfo.ValidateHit = hit
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseWithCacheInfo builds the graph of text with caching and returns cache
// hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, text string, opts Options) (Parsed, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Parsed{}, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.GraphKey(cache.HashString(text), opts.GraphKeyOpts())
	return withCache(ctx, r, "graph", key, cache.TTLGraph, opts.Refresh, func() (Parsed, error) {
		done := stage(ctx, observability.StageParse)
		g, outcome := Parse(text, opts)
		done(nil)
		opts.Logger.Debug("parsed document",
			"outcome", outcome,
			"nodes", g.NodeCount(),
			"edges", g.EdgeCount())
		return Parsed{Graph: g, Outcome: outcome.String()}, nil
	})
}

// LayoutWithCacheInfo lays out g with caching and returns cache hit info.
// The key covers the serialized graph, so equal graphs from different
// documents share a layout.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}
	r.applyLogger(&opts)

	data, err := graph.MarshalGraph(g)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())
	return withCache(ctx, r, "layout", key, cache.TTLLayout, opts.Refresh, func() (graph.Layout, error) {
		done := stage(ctx, observability.StageLayout)
		l, err := ComputeLayout(ctx, g, opts)
		done(err)
		if err != nil {
			return graph.Layout{}, err
		}
		opts.Logger.Debug("computed layout",
			"engine", l.Engine,
			"direction", l.Direction,
			"width", l.Width,
			"height", l.Height)
		return l, nil
	})
}

// ValidateWithCacheInfo validates text with caching and returns cache hit
// info.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, text string, opts Options) (validate.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return validate.Report{}, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.ReportKey(cache.HashString(text))
	return withCache(ctx, r, "report", key, cache.TTLReport, opts.Refresh, func() (validate.Report, error) {
		done := stage(ctx, observability.StageValidate)
		report := validate.Validate(text)
		done(nil)
		opts.Logger.Debug("validated document",
			"valid", report.IsValid,
			"issues", len(report.Issues),
			"cycles", len(report.Cycles),
			"port_conflicts", len(report.PortConflicts))
		return report, nil
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// withCache returns the cached JSON value under key, or computes and stores
// it. Cache failures are logged and otherwise ignored.
func withCache[T any](ctx context.Context, r *Runner, kind, key string, ttl time.Duration, refresh bool, compute func() (T, error)) (T, bool, error) {
	hooks := observability.Cache()
	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "kind", kind, "err", err)
		case hit:
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				hooks.OnCacheHit(ctx, kind)
				return v, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		}
	}
	hooks.OnCacheMiss(ctx, kind)

	v, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if data, err := json.Marshal(v); err == nil {
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		} else {
			hooks.OnCacheSet(ctx, kind, len(data))
		}
	}
	return v, false, nil
}

// stage emits the start hook and returns the completion callback.
func stage(ctx context.Context, name string) func(error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	return func(err error) {
		hooks.OnStageComplete(ctx, name, time.Since(start), err)
	}
}
