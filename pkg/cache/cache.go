// Package cache stores derived artifacts (layouts, component lists,
// rendered drawings) keyed by the content hash of their inputs.
//
// # Backends
//
//   - [FileCache]: one file per entry below a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: disables caching
//
// # Keys
//
// A [Keyer] derives keys from a graph hash and the options that influence
// the result, so two redraws with the same hidden set, expansion and
// layout parameters share one entry. [ScopedKeyer] prefixes keys for
// separate namespaces.
package cache

import (
	"context"
	"slices"
	"time"
)

// Default entry lifetimes.
const (
	// LayoutTTL bounds cached layouts and component lists.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL bounds cached renderings.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// ComponentsKey keys the SCC decomposition of a graph.
	ComponentsKey(graphHash string) string

	// LayoutKey keys a layout of a graph under a view.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendering of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists everything besides the graph that changes a layout.
type LayoutKeyOpts struct {
	Hidden          []int    `json:"hidden,omitempty"`
	Expanded        []int    `json:"expanded,omitempty"`
	ExpandAll       bool     `json:"expand_all,omitempty"`
	CompressBy      string   `json:"compress_by,omitempty"`
	DropPassThrough bool     `json:"drop_pass_through,omitempty"`
	PruneKinds      []string `json:"prune_kinds,omitempty"`

	BoxWidth   float64 `json:"box_width"`
	BoxHeight  float64 `json:"box_height"`
	Padding    float64 `json:"padding"`
	Margin     float64 `json:"margin"`
	RootOffset float64 `json:"root_offset"`
}

// normalize sorts the id and kind sets so that equal views hash equally.
func (o LayoutKeyOpts) normalize() LayoutKeyOpts {
	o.Hidden = slices.Sorted(slices.Values(o.Hidden))
	o.Expanded = slices.Sorted(slices.Values(o.Expanded))
	o.PruneKinds = slices.Sorted(slices.Values(o.PruneKinds))
	return o
}

// ArtifactKeyOpts lists the rendering options of an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"` // "svg", "dot" or "json"
	Renderer string  `json:"renderer,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Edges    bool    `json:"edges,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ComponentsKey implements [Keyer].
func (DefaultKeyer) ComponentsKey(graphHash string) string {
	return "scc:" + graphHash
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.normalize())
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
