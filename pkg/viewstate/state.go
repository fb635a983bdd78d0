// Package viewstate persists what a user has done to a graph view: the
// hidden vertex set, which synthetic vertices are expanded, the current
// selection, and compression settings.
//
// The engine itself is stateless between redraws; a State lets the CLI
// carry the hidden set across invocations the way an interactive viewer
// carries it across clicks.
//
//	store, _ := viewstate.NewFileStore("")
//	st, _ := store.Get(ctx, "default")
//	st.Hide(4, 7)
//	_ = store.Set(ctx, st)
package viewstate

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
)

// DefaultName is the state used when none is named.
const DefaultName = "default"

// ErrNotFound is returned when a named state does not exist.
var ErrNotFound = stderrors.New("view state not found")

// State is one saved view. Id sets are kept sorted and free of duplicates.
type State struct {
	ID        uuid.UUID `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Graph     string    `yaml:"graph,omitempty" json:"graph,omitempty"` // hash of the graph the ids refer to
	Hidden    []int     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Expanded  []int     `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Selection []int     `yaml:"selection,omitempty" json:"selection,omitempty"`

	CompressBy      string   `yaml:"compress_by,omitempty" json:"compress_by,omitempty"`
	DropPassThrough bool     `yaml:"drop_pass_through,omitempty" json:"drop_pass_through,omitempty"`
	PruneKinds      []string `yaml:"prune_kinds,omitempty" json:"prune_kinds,omitempty"`

	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// New returns an empty state with a fresh id.
func New(name string) (*State, error) {
	if err := errors.ValidateStateName(name); err != nil {
		return nil, err
	}
	return &State{ID: uuid.New(), Name: name, UpdatedAt: time.Now()}, nil
}

// Hide adds ids to the hidden set.
func (s *State) Hide(ids ...int) { s.Hidden = union(s.Hidden, ids) }

// Unhide removes ids from the hidden set.
func (s *State) Unhide(ids ...int) { s.Hidden = difference(s.Hidden, ids) }

// UnhideAll clears the hidden set.
func (s *State) UnhideAll() { s.Hidden = nil }

// Expand marks ids as expanded.
func (s *State) Expand(ids ...int) { s.Expanded = union(s.Expanded, ids) }

// Collapse clears the expanded mark of ids.
func (s *State) Collapse(ids ...int) { s.Expanded = difference(s.Expanded, ids) }

// Select replaces the selection.
func (s *State) Select(ids ...int) { s.Selection = union(nil, ids) }

// IsHidden reports whether id is in the hidden set.
func (s *State) IsHidden(id int) bool {
	_, ok := slices.BinarySearch(s.Hidden, id)
	return ok
}

// Apply replays the hidden set onto h, replacing whatever h had hidden.
// Ids that h does not know are skipped and returned, since a state may
// outlive edits to the graph file.
func (s *State) Apply(h *digraph.Hierarchical) (stale []int) {
	h.UnhideAll()
	for _, id := range s.Hidden {
		if err := h.Hide(id); err != nil {
			stale = append(stale, id)
		}
	}
	return stale
}

func union(set, ids []int) []int {
	out := append(slices.Clone(set), ids...)
	slices.Sort(out)
	return slices.Compact(out)
}

func difference(set, ids []int) []int {
	out := slices.DeleteFunc(slices.Clone(set), func(id int) bool { return slices.Contains(ids, id) })
	if len(out) == 0 {
		return nil
	}
	return out
}

// Store persists states by name.
type Store interface {
	// Get returns the named state, or an error wrapping [ErrNotFound].
	Get(ctx context.Context, name string) (*State, error)

	// Set stores st under st.Name and stamps UpdatedAt.
	Set(ctx context.Context, st *State) error

	// Delete removes the named state. Deleting a missing state is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the stored state names in order.
	List(ctx context.Context) ([]string, error)
}

// Load returns the named state, creating an empty one if it does not
// exist yet.
func Load(ctx context.Context, store Store, name string) (*State, error) {
	st, err := store.Get(ctx, name)
	if stderrors.Is(err, ErrNotFound) {
		return New(name)
	}
	return st, err
}
