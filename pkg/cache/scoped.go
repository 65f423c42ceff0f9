package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. The CLI and server
// scope keys by build version so an upgrade never reads entries written by
// an older layout algorithm:
//
//	keyer := cache.NewScopedKeyer(nil, "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey implements [Keyer].
func (k *ScopedKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(docHash, opts)
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ReportKey implements [Keyer].
func (k *ScopedKeyer) ReportKey(docHash string) string {
	return k.prefix + k.inner.ReportKey(docHash)
}

// AnalysisKey implements [Keyer].
func (k *ScopedKeyer) AnalysisKey(docHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(docHash, opts)
}
