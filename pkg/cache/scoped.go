package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// graph sources can share one backend without key collisions.
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:compiler:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ComponentsKey generates a prefixed key for SCC caching.
func (k *ScopedKeyer) ComponentsKey(graphHash string) string {
	return k.prefix + k.inner.ComponentsKey(graphHash)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
