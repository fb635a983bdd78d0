package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/observability"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
)

const cyclicGraph = `{
  "vertices": [{"id": 0, "label": "A"}, {"id": 1, "label": "B"}, {"id": 2, "label": "C"}, {"id": 3, "label": "D"}],
  "edges": [{"from": 0, "to": 1}, {"from": 1, "to": 2}, {"from": 2, "to": 0}, {"from": 0, "to": 3}]
}`

func testServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	srv := httptest.NewServer(NewServer(pipeline.NewRunner(c, nil, logger), logger, maxBody).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := testServer(t, 0)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v, %v", body, err)
	}
}

func TestLayout(t *testing.T) {
	srv := testServer(t, 0)
	body := `{"graph": ` + cyclicGraph + `, "view": {"expand_all": true}}`

	resp := post(t, srv, "/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.CacheHit || out.Stats.Components != 1 || out.Stats.Boxes != 5 || out.GraphHash == "" {
		t.Errorf("response = %+v", out)
	}

	again := post(t, srv, "/v1/layout", body)
	var second LayoutResponse
	if err := json.NewDecoder(again.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || second.GraphHash != out.GraphHash {
		t.Errorf("second response = %+v, want cache hit", second)
	}
}

func TestLayout_Hidden(t *testing.T) {
	srv := testServer(t, 0)
	resp := post(t, srv, "/v1/layout", `{"graph": `+cyclicGraph+`, "hidden": [1, 2]}`)
	var out LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Stats.Components != 0 || !slices.Equal(out.Layout.Hidden, []int{1, 2}) {
		t.Errorf("response = %+v", out)
	}
}

func TestRender(t *testing.T) {
	srv := testServer(t, 0)
	body := `{"graph": ` + cyclicGraph + `, "render": {"format": "dot"}}`

	resp := post(t, srv, "/v1/render", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("body = %q", data)
	}

	again := post(t, srv, "/v1/render", body)
	if again.Header.Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", again.Header.Get("X-Cache"))
	}

	svg := post(t, srv, "/v1/render", `{"graph": `+cyclicGraph+`}`)
	if ct := svg.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("default Content-Type = %q", ct)
	}
}

func TestComponents(t *testing.T) {
	srv := testServer(t, 0)
	resp := post(t, srv, "/v1/components", `{"graph": `+cyclicGraph+`}`)
	var out ComponentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	want := [][]int{{3}, {0, 1, 2}}
	if !slices.EqualFunc(out.Components, want, slices.Equal[[]int]) {
		t.Errorf("components = %v, want %v", out.Components, want)
	}
}

func TestErrors(t *testing.T) {
	srv := testServer(t, 0)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/v1/layout", `{"graph": `, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown hidden vertex", "/v1/layout", `{"graph": ` + cyclicGraph + `, "hidden": [9]}`, http.StatusBadRequest, "VERTEX_NOT_FOUND"},
		{"negative hidden id", "/v1/components", `{"graph": ` + cyclicGraph + `, "hidden": [-1]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown prune kind", "/v1/layout", `{"graph": ` + cyclicGraph + `, "view": {"prune_kinds": ["widget"]}}`, http.StatusBadRequest, "INVALID_KIND"},
		{"unknown format", "/v1/render", `{"graph": ` + cyclicGraph + `, "render": {"format": "png"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad vertex kind", "/v1/layout", `{"graph": {"vertices": [{"id": 0, "kind": "widget"}]}}`, http.StatusBadRequest, "INVALID_KIND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var out ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if out.Code != tt.code || out.Error == "" {
				t.Errorf("error = %+v, want code %s", out, tt.code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	srv := testServer(t, 64)
	resp := post(t, srv, "/v1/layout", `{"graph": `+cyclicGraph+`}`)
	if resp.StatusCode < 400 || resp.StatusCode >= 500 {
		t.Errorf("status = %d, want a client error", resp.StatusCode)
	}
}

type recordingHooks struct {
	observability.NoopAPIHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestAPIHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetAPIHooks(hooks)
	defer observability.Reset()

	srv := testServer(t, 0)
	_ = post(t, srv, "/v1/components", `{"graph": `+cyclicGraph+`}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if !slices.Equal(hooks.routes, []string{"POST /v1/components"}) {
		t.Errorf("routes = %v", hooks.routes)
	}
}
