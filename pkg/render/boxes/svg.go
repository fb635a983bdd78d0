package boxes

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"slices"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/graph"
)

// DefaultScale converts layout units to SVG user units.
const DefaultScale = 40.0

const boxInteractionCSS = `
    .box { transition: stroke-width 0.2s ease; }
    .box.highlight { stroke-width: 3; }
    .edge.spliced { stroke-dasharray: 4 3; }
    .edge.back { stroke: #c0392b; }`

const boxInteractionJS = `
    document.querySelectorAll('.box').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale     float64
	showEdges bool
	labels    bool
}

// WithScale sets the number of SVG units per layout unit.
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithEdges draws the level edges of the layout.
func WithEdges() SVGOption { return func(r *svgRenderer) { r.showEdges = true } }

// WithoutLabels omits box labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG draws a layout as nested boxes. Boxes of expanded vertices are
// drawn as open frames behind their children; edges run from the bottom
// centre of the source box to the top centre of the target box.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{scale: DefaultScale, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	boxes := slices.Clone(l.Boxes)
	// Outer boxes first so frames sit behind their members.
	slices.SortStableFunc(boxes, func(a, b graph.Box) int { return cmp.Compare(a.Depth, b.Depth) })

	w, h := l.Width*r.scale, (l.Height+rootY(l))*r.scale
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto"><path d="M0,0 L10,5 L0,10 z"/></marker></defs>` + "\n")

	for _, b := range boxes {
		r.renderBox(&buf, b)
	}
	if r.showEdges {
		byID := make(map[int]graph.Box, len(l.Boxes))
		for _, b := range l.Boxes {
			byID[b.ID] = b
		}
		for _, e := range l.Edges {
			r.renderEdge(&buf, e, byID)
		}
	}
	if r.labels {
		for _, b := range boxes {
			r.renderText(&buf, b)
		}
	}

	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", boxInteractionCSS)
	fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", boxInteractionJS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// rootY recovers the root offset so the canvas includes it.
func rootY(l graph.Layout) float64 {
	if len(l.Boxes) == 0 {
		return 0
	}
	return l.Boxes[0].AbsY - l.Boxes[0].Y
}

func (r svgRenderer) renderBox(buf *bytes.Buffer, b graph.Box) {
	fill, dash := "white", ""
	switch {
	case b.Expanded:
		fill, dash = "none", ` stroke-dasharray="6 4"`
	case b.Kind == digraph.KindComponent.String() || b.Kind == digraph.KindGroup.String():
		fill = "#e8e8e8"
	}
	fmt.Fprintf(buf, `  <rect id="box-%d" class="box" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="#333" stroke-width="1.5"%s/>`+"\n",
		b.ID, b.AbsX*r.scale, b.AbsY*r.scale, b.Width*r.scale, b.Height*r.scale, fill, dash)
}

func (r svgRenderer) renderEdge(buf *bytes.Buffer, e graph.LayoutEdge, byID map[int]graph.Box) {
	src, okS := byID[e.From]
	dst, okD := byID[e.To]
	if !okS || !okD {
		return
	}
	class := "edge"
	switch {
	case e.Back:
		class += " back"
	case e.Spliced:
		class += " spliced"
	}
	x1, y1 := (src.AbsX+src.Width/2)*r.scale, (src.AbsY+src.Height)*r.scale
	x2, y2 := (dst.AbsX+dst.Width/2)*r.scale, dst.AbsY*r.scale
	if e.Back || e.From == e.To {
		x1, y1 = (src.AbsX+src.Width)*r.scale, (src.AbsY+src.Height/2)*r.scale
		x2, y2 = (dst.AbsX+dst.Width)*r.scale, (dst.AbsY+dst.Height/4)*r.scale
	}
	fmt.Fprintf(buf, `  <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#555" marker-end="url(#arrow)"/>`+"\n",
		class, x1, y1, x2, y2)
}

func (r svgRenderer) renderText(buf *bytes.Buffer, b graph.Box) {
	label := b.Label
	if label == "" {
		label = fmt.Sprintf("#%d", b.ID)
	}
	if b.Members > 0 && !b.Expanded {
		label = fmt.Sprintf("%s (%d)", label, b.Members)
	}
	x := (b.AbsX + b.Width/2) * r.scale
	y := (b.AbsY + b.Height/2) * r.scale
	anchor := "middle"
	if b.Expanded {
		x, y, anchor = (b.AbsX+0.1)*r.scale, (b.AbsY+0.3)*r.scale, "start"
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="middle" font-family="sans-serif" font-size="12">%s</text>`+"\n",
		x, y, anchor, html.EscapeString(label))
}
