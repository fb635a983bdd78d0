package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/layout"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LayoutOptions() != layout.DefaultOptions() {
		t.Errorf("LayoutOptions() = %+v, want defaults", cfg.LayoutOptions())
	}
	if cfg.Cache.Backend != "file" || cfg.View.Name != "default" || cfg.Render.Format != "svg" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Server.ReadTimeout != 30*time.Second || cfg.Server.MaxBodyBytes != 10<<20 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "foldgraph.toml")
	content := `
[layout]
padding = 2.0
margin = 4.0

[render]
renderer = "graphviz"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLDGRAPH_LAYOUT_MARGIN", "5")
	t.Setenv("FOLDGRAPH_LAYOUT_BOX_WIDTH", "2.5")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("padding", 1, "")
	fs.Float64("margin", 1, "")
	fs.String("format", "svg", "")
	fs.Bool("unrelated", false, "")
	if err := fs.Parse([]string{"--padding=3", "--unrelated"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Layout.Padding != 3 {
		t.Errorf("padding = %v, want flag value 3", cfg.Layout.Padding)
	}
	if cfg.Layout.Margin != 5 {
		t.Errorf("margin = %v, want env value 5", cfg.Layout.Margin)
	}
	if cfg.Layout.BoxWidth != 2.5 {
		t.Errorf("box_width = %v, want env value 2.5", cfg.Layout.BoxWidth)
	}
	if cfg.Render.Renderer != "graphviz" {
		t.Errorf("renderer = %q, want file value", cfg.Render.Renderer)
	}
	if cfg.Render.Format != "svg" {
		t.Errorf("format = %q, unchanged flag should not override", cfg.Render.Format)
	}
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Load(missing) error = %v, want INVALID_INPUT", err)
	}

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"backend", map[string]string{"FOLDGRAPH_CACHE_BACKEND": "memcached"}, "backend"},
		{"box width", map[string]string{"FOLDGRAPH_LAYOUT_BOX_WIDTH": "0"}, "boxwidth"},
		{"redis addr", map[string]string{"FOLDGRAPH_CACHE_BACKEND": "redis"}, "redisaddr"},
		{"log level", map[string]string{"FOLDGRAPH_LOG_LEVEL": "loud"}, "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			if errors.GetCode(err) != errors.ErrCodeInvalidInput || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want INVALID_INPUT mentioning %q", err, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Cache.RedisPassword = "secret"

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[layout]") || !strings.Contains(out, `renderer = "boxes"`) {
		t.Errorf("Write() output missing sections:\n%s", out)
	}
	if strings.Contains(out, "secret") {
		t.Error("Write() should not print the redis password")
	}

	path := filepath.Join(t.TempDir(), "out.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	again, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load(written) error: %v", err)
	}
	if again.LayoutOptions() != cfg.LayoutOptions() || again.Server != cfg.Server {
		t.Errorf("round trip changed config: %+v vs %+v", again, cfg)
	}
}

func TestKeyer(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	plain := cfg.Keyer().ComponentsKey("abc")

	t.Setenv("FOLDGRAPH_CACHE_PREFIX", "team:")
	cfg, err = Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Prefix != "team:" {
		t.Fatalf("prefix = %q, want env value", cfg.Cache.Prefix)
	}
	if got := cfg.Keyer().ComponentsKey("abc"); got != "team:"+plain {
		t.Errorf("ComponentsKey = %q, want %q", got, "team:"+plain)
	}
}

func TestFlagKey(t *testing.T) {
	if k, ok := FlagKey("box-width"); !ok || k != "layout.box_width" {
		t.Errorf("FlagKey(box-width) = %q, %v", k, ok)
	}
	if _, ok := FlagKey("nope"); ok {
		t.Error("unknown flag should not map")
	}
}
