// Package layout computes nested box geometry for hierarchical graphs.
//
// # Overview
//
// [Layout] assigns a width, height and position to every vertex below a
// root. A collapsed vertex is a fixed-size box. An expanded vertex is a box
// large enough to contain the layout of its inner graph, so the result is a
// drawing of nested boxes where any vertex can be opened in place.
//
// # Algorithm
//
// Each level (the inner graph of one vertex) is laid out as a forest:
//
//  1. [AssignChildren] runs a Kahn-style pass from the level's sources. A
//     vertex with several predecessors becomes the child of the one that
//     is processed last, so it is placed exactly once.
//  2. A bottom-up pass computes each subtree's bounding box: as wide as the
//     vertex or as its children side by side, whichever is wider, and as
//     tall as the vertex plus padding plus its tallest child.
//  3. A top-down pass centres children below their parent and stacks each
//     generation one padding below the previous one.
//
// Sizes depend on descendants while positions depend on ancestors, hence
// the two passes. Expanded inner graphs are laid out before their level.
//
// # Coordinates
//
// X and Y are relative to the top-left corner of the enclosing vertex's
// box. An expanded vertex's content is inset by [Options.Margin]. The
// outermost root is shifted down by [Options.RootOffset].
//
// # Errors
//
// Levels must be acyclic apart from self loops; collapse strongly
// connected components first (see the transform package). A cycle is
// reported as [ErrCyclicLevel] and an unreachable vertex as
// [ErrUnvisited]; neither is patched over.
//
// # Concurrency
//
// [WithParallel] lays out sibling inner graphs concurrently. Inner graphs
// are owned by exactly one vertex, so the goroutines touch disjoint
// vertices, and placement of a level still waits for all of them.
package layout
