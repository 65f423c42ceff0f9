package cache

// Keyer derives cache keys. Every key embeds a hash of all inputs that
// influence the cached value.
type Keyer interface {
	// GraphKey is the key of the graph parsed from a document.
	GraphKey(docHash string, opts GraphKeyOpts) string
	// LayoutKey is the key of a layout of a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ReportKey is the key of a document's validation report.
	ReportKey(docHash string) string
	// AnalysisKey is the key of a combined graph, layout and report.
	AnalysisKey(docHash string, opts LayoutKeyOpts) string
}

// GraphKeyOpts are the parse options that change a graph.
type GraphKeyOpts struct {
	Dangling string `json:"dangling"`
}

// LayoutKeyOpts are the layout options that change positions.
type LayoutKeyOpts struct {
	Direction string  `json:"direction"`
	Engine    string  `json:"engine"`
	Dangling  string  `json:"dangling,omitempty"`
	RankSep   float64 `json:"rank_sep,omitempty"`
	NodeSep   float64 `json:"node_sep,omitempty"`
	EdgeSep   float64 `json:"edge_sep,omitempty"`
	Passes    int     `json:"passes,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	return hashKey("graph", docHash, opts)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ReportKey implements [Keyer].
func (DefaultKeyer) ReportKey(docHash string) string {
	return hashKey("report", docHash)
}

// AnalysisKey implements [Keyer].
func (DefaultKeyer) AnalysisKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("analysis", docHash, opts)
}
