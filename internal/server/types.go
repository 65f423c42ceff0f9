package server

import (
	"github.com/matzehuels/composeviz/pkg/graph"
	"github.com/matzehuels/composeviz/pkg/pipeline"
	"github.com/matzehuels/composeviz/pkg/store"
	"github.com/matzehuels/composeviz/pkg/validate"
)

// =============================================================================
// Request Types
// =============================================================================

// DocumentRequest is the body of every analysis endpoint.
type DocumentRequest struct {
	Document  string  `json:"document"`
	Direction string  `json:"direction,omitempty"`
	Engine    string  `json:"engine,omitempty"`
	Dangling  string  `json:"dangling,omitempty"`
	RankSep   float64 `json:"rank_sep,omitempty"`
	NodeSep   float64 `json:"node_sep,omitempty"`
}

func (r DocumentRequest) options() pipeline.Options {
	return pipeline.Options{
		Direction: r.Direction,
		Engine:    r.Engine,
		Dangling:  r.Dangling,
		RankSep:   r.RankSep,
		NodeSep:   r.NodeSep,
	}
}

// =============================================================================
// Response Types
// =============================================================================

// GraphResponse is the response of POST /api/v1/graph.
type GraphResponse struct {
	Outcome string      `json:"outcome"`
	Graph   graph.Graph `json:"graph"`
}

// LayoutResponse is the response of POST /api/v1/layout.
type LayoutResponse struct {
	Outcome string       `json:"outcome"`
	Layout  graph.Layout `json:"layout"`
}

// ValidateResponse is the response of POST /api/v1/validate.
type ValidateResponse = validate.Report

// SnapshotResponse pairs a stored snapshot with its analysis.
type SnapshotResponse struct {
	Snapshot *store.Snapshot  `json:"snapshot"`
	Analysis *pipeline.Result `json:"analysis,omitempty"`
	ShareURL string           `json:"share_url,omitempty"`
}

// SnapshotListResponse is the response of GET /api/v1/snapshots.
type SnapshotListResponse struct {
	Snapshots []*store.Snapshot `json:"snapshots"`
}

// ShareResponse is the response of POST /api/v1/share.
type ShareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url,omitempty"`
}

// HealthResponse is the response of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
