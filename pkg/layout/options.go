package layout

// Default geometry, in layout units. Renderers scale these to pixels.
const (
	DefaultBoxWidth   = 1.0  // Width of a collapsed vertex
	DefaultBoxHeight  = 1.0  // Height of a collapsed vertex
	DefaultPadding    = 1.0  // Gap between siblings and between levels
	DefaultMargin     = 1.0  // Inset of a level inside its enclosing box
	DefaultRootOffset = 10.0 // Vertical offset of the outermost root
)

// Options controls the geometry produced by [Layout].
type Options struct {
	BoxWidth   float64 // Base width of every vertex
	BoxHeight  float64 // Base height of every vertex
	Padding    float64 // Horizontal gap between siblings, vertical gap below a parent
	Margin     float64 // Space between an expanded vertex's border and its content
	RootOffset float64 // Added to the outermost root's Y

	// Parallel bounds how many expanded inner graphs of one level are laid
	// out concurrently. Values below 2 lay out sequentially.
	Parallel int
}

// DefaultOptions returns the default geometry with sequential layout.
func DefaultOptions() Options {
	return Options{
		BoxWidth:   DefaultBoxWidth,
		BoxHeight:  DefaultBoxHeight,
		Padding:    DefaultPadding,
		Margin:     DefaultMargin,
		RootOffset: DefaultRootOffset,
	}
}

// Option modifies [Options].
type Option func(*Options)

// WithOptions replaces all options at once.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithBoxSize sets the base vertex size. Non-positive values are ignored.
func WithBoxSize(width, height float64) Option {
	return func(o *Options) {
		if width > 0 {
			o.BoxWidth = width
		}
		if height > 0 {
			o.BoxHeight = height
		}
	}
}

// WithPadding sets the sibling and level gap.
func WithPadding(p float64) Option {
	return func(o *Options) { o.Padding = max(p, 0) }
}

// WithMargin sets the inset of laid out inner graphs.
func WithMargin(m float64) Option {
	return func(o *Options) { o.Margin = max(m, 0) }
}

// WithRootOffset sets the vertical offset of the outermost root.
func WithRootOffset(off float64) Option {
	return func(o *Options) { o.RootOffset = off }
}

// WithParallel lays out up to n sibling inner graphs concurrently. The
// result is identical to a sequential layout.
func WithParallel(n int) Option {
	return func(o *Options) { o.Parallel = n }
}
