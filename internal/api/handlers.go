package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/foldgraph/pkg/buildinfo"
	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/layout"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
)

// =============================================================================
// Requests and Responses
// =============================================================================

// GraphRequest is the graph and hidden set shared by every endpoint.
type GraphRequest struct {
	Graph  graph.Graph `json:"graph"`
	Hidden []int       `json:"hidden,omitempty" validate:"dive,gte=0"`
}

// Geometry overrides layout defaults. Zero fields keep the default.
type Geometry struct {
	BoxWidth   float64 `json:"box_width,omitempty" validate:"gte=0"`
	BoxHeight  float64 `json:"box_height,omitempty" validate:"gte=0"`
	Padding    float64 `json:"padding,omitempty" validate:"gte=0"`
	Margin     float64 `json:"margin,omitempty" validate:"gte=0"`
	RootOffset float64 `json:"root_offset,omitempty"`
}

// Options returns the layout options with g applied over the defaults.
func (g Geometry) Options() layout.Options {
	o := layout.DefaultOptions()
	opts := []layout.Option{layout.WithBoxSize(g.BoxWidth, g.BoxHeight)}
	if g.Padding > 0 {
		opts = append(opts, layout.WithPadding(g.Padding))
	}
	if g.Margin > 0 {
		opts = append(opts, layout.WithMargin(g.Margin))
	}
	if g.RootOffset != 0 {
		opts = append(opts, layout.WithRootOffset(g.RootOffset))
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	GraphRequest
	View     pipeline.View `json:"view"`
	Geometry Geometry      `json:"geometry"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	LayoutRequest
	Render pipeline.RenderOptions `json:"render"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	GraphHash string       `json:"graph_hash"`
	CacheHit  bool         `json:"cache_hit"`
	Stats     Stats        `json:"stats"`
	Layout    graph.Layout `json:"layout"`
}

// Stats summarizes a redraw.
type Stats struct {
	Vertices   int   `json:"vertices"`
	Components int   `json:"components"`
	Boxes      int   `json:"boxes"`
	LayoutMS   int64 `json:"layout_ms"`
}

// ComponentsResponse is returned by POST /v1/components.
type ComponentsResponse struct {
	Components [][]int `json:"components"`
	CacheHit   bool    `json:"cache_hit"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, ok := s.redraw(w, r, req)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, LayoutResponse{
		GraphHash: res.GraphHash,
		CacheHit:  res.CacheHit,
		Stats: Stats{
			Vertices:   res.Stats.Vertices,
			Components: res.Stats.Components,
			Boxes:      res.Stats.Boxes,
			LayoutMS:   res.Stats.LayoutTime.Milliseconds(),
		},
		Layout: res.Layout,
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Render.SetDefaults()
	if err := req.Render.Validate(); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "render options"))
		return
	}
	res, ok := s.redraw(w, r, req.LayoutRequest)
	if !ok {
		return
	}
	data, hit, err := s.runner.Render(r.Context(), res, req.Render)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(req.Render.Format))
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) components(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if !s.decode(w, r, &req) {
		return
	}
	h, ok := s.hierarchy(w, req)
	if !ok {
		return
	}
	comps, hit, err := s.runner.Components(r.Context(), h)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ComponentsResponse{Components: comps, CacheHit: hit})
}

func (s *Server) redraw(w http.ResponseWriter, r *http.Request, req LayoutRequest) (*pipeline.Result, bool) {
	h, ok := s.hierarchy(w, req.GraphRequest)
	if !ok {
		return nil, false
	}
	res, err := s.runner.Redraw(r.Context(), h, req.View, req.Geometry.Options())
	if err != nil {
		s.respondError(w, err)
		return nil, false
	}
	return res, true
}

func (s *Server) hierarchy(w http.ResponseWriter, req GraphRequest) (*digraph.Hierarchical, bool) {
	h, err := graph.ToHierarchical(req.Graph, digraph.WithLogger(s.logger))
	if err != nil {
		s.respondError(w, err)
		return nil, false
	}
	for _, id := range req.Hidden {
		if err := h.Hide(id); err != nil {
			s.respondError(w, err)
			return nil, false
		}
	}
	return h, true
}

// decode reads and validates a JSON body, responding on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  string(errors.ErrCodeInvalidInput),
			})
			return false
		}
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			err = errors.New(errors.ErrCodeInvalidInput, "%s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		s.respondError(w, err)
		return false
	}
	return true
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, ErrorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeStateNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeCyclicLevel):
		return http.StatusUnprocessableEntity
	case errors.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "application/json"
	}
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
