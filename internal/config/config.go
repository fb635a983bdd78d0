// Package config loads foldgraph settings from defaults, a TOML file,
// FOLDGRAPH_* environment variables and command-line flags, in increasing
// order of priority.
//
// Keys are "<section>.<name>", for example layout.box_width. The matching
// environment variable is FOLDGRAPH_LAYOUT_BOX_WIDTH and the flag is
// --box-width.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/layout"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
	"github.com/matzehuels/foldgraph/pkg/render/boxes"
	"github.com/matzehuels/foldgraph/pkg/viewstate"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "FOLDGRAPH_"

// Config holds all configuration for the application.
type Config struct {
	Cache  CacheConfig  `koanf:"cache" toml:"cache"`
	Layout LayoutConfig `koanf:"layout" toml:"layout"`
	Render RenderConfig `koanf:"render" toml:"render"`
	View   ViewConfig   `koanf:"view" toml:"view"`
	Server ServerConfig `koanf:"server" toml:"server"`
	Log    LogConfig    `koanf:"log" toml:"log"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `koanf:"backend" toml:"backend" validate:"oneof=file redis mongo none"`
	Dir           string `koanf:"dir" toml:"dir,omitempty"`
	Prefix        string `koanf:"prefix" toml:"prefix,omitempty"`
	RedisAddr     string `koanf:"redis_addr" toml:"redis_addr,omitempty" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password" toml:"-"`
	RedisDB       int    `koanf:"redis_db" toml:"redis_db" validate:"gte=0,lte=15"`
	MongoURI      string `koanf:"mongo_uri" toml:"mongo_uri,omitempty" validate:"required_if=Backend mongo"`
	MongoDatabase string `koanf:"mongo_database" toml:"mongo_database,omitempty"`
}

// LayoutConfig is the layout geometry.
type LayoutConfig struct {
	BoxWidth   float64 `koanf:"box_width" toml:"box_width" validate:"gt=0"`
	BoxHeight  float64 `koanf:"box_height" toml:"box_height" validate:"gt=0"`
	Padding    float64 `koanf:"padding" toml:"padding" validate:"gte=0"`
	Margin     float64 `koanf:"margin" toml:"margin" validate:"gte=0"`
	RootOffset float64 `koanf:"root_offset" toml:"root_offset"`
	Parallel   int     `koanf:"parallel" toml:"parallel" validate:"gte=0,lte=64"`
}

// RenderConfig is the default artifact.
type RenderConfig struct {
	Format   string  `koanf:"format" toml:"format" validate:"oneof=svg dot json"`
	Renderer string  `koanf:"renderer" toml:"renderer" validate:"oneof=boxes graphviz"`
	Scale    float64 `koanf:"scale" toml:"scale" validate:"gt=0"`
	Edges    bool    `koanf:"edges" toml:"edges"`
	Detailed bool    `koanf:"detailed" toml:"detailed"`
}

// ViewConfig names the saved view state.
type ViewConfig struct {
	Name string `koanf:"name" toml:"name" validate:"required"`
	Dir  string `koanf:"dir" toml:"dir,omitempty"`
}

// ServerConfig configures `foldgraph serve`.
type ServerConfig struct {
	Addr         string        `koanf:"addr" toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" toml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" toml:"write_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" toml:"max_body_bytes" validate:"gt=0"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" validate:"oneof=debug info warn error"`
}

// Defaults returns the built-in configuration as nested koanf sections.
func Defaults() map[string]any {
	return map[string]any{
		"cache": map[string]any{
			"backend":        cache.BackendFile,
			"redis_db":       0,
			"mongo_database": "foldgraph",
		},
		"layout": map[string]any{
			"box_width":   layout.DefaultBoxWidth,
			"box_height":  layout.DefaultBoxHeight,
			"padding":     layout.DefaultPadding,
			"margin":      layout.DefaultMargin,
			"root_offset": layout.DefaultRootOffset,
			"parallel":    0,
		},
		"render": map[string]any{
			"format":   pipeline.FormatSVG,
			"renderer": pipeline.RendererBoxes,
			"scale":    boxes.DefaultScale,
			"edges":    false,
			"detailed": false,
		},
		"view": map[string]any{
			"name": viewstate.DefaultName,
		},
		"server": map[string]any{
			"addr":           ":8080",
			"read_timeout":   "30s",
			"write_timeout":  "60s",
			"max_body_bytes": 10 << 20,
		},
		"log": map[string]any{
			"level": "info",
		},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"cache-backend": "cache.backend",
	"cache-dir":     "cache.dir",
	"cache-prefix":  "cache.prefix",
	"redis-addr":    "cache.redis_addr",
	"mongo-uri":     "cache.mongo_uri",
	"box-width":     "layout.box_width",
	"box-height":    "layout.box_height",
	"padding":       "layout.padding",
	"margin":        "layout.margin",
	"parallel":      "layout.parallel",
	"format":        "render.format",
	"renderer":      "render.renderer",
	"scale":         "render.scale",
	"edges":         "render.edges",
	"detailed":      "render.detailed",
	"view":          "view.name",
	"addr":          "server.addr",
	"log-level":     "log.level",
}

// FlagKey returns the configuration key bound to a flag name.
func FlagKey(flag string) (string, bool) {
	k, ok := flagKeys[flag]
	return k, ok
}

// DefaultPath returns ~/.config/foldgraph/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "foldgraph", "config.toml"), nil
}

// Load merges defaults, the config file at path, the environment and the
// changed flags of f, then validates the result. An empty path reads
// [DefaultPath] if it exists; an explicit path must exist. f may be nil.
func Load(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
		}
	}

	// FOLDGRAPH_LAYOUT_BOX_WIDTH -> layout.box_width
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, any) {
			key, ok := flagKeys[fl.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.New(errors.ErrCodeInvalidInput, "config %s: failed %q (value %v)",
				strings.ToLower(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "validate config")
	}
	return nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}

// Keyer returns the cache keyer, scoped by the configured prefix so that
// several users or graph sources can share one backend.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// LayoutOptions converts the layout section.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		BoxWidth:   c.Layout.BoxWidth,
		BoxHeight:  c.Layout.BoxHeight,
		Padding:    c.Layout.Padding,
		Margin:     c.Layout.Margin,
		RootOffset: c.Layout.RootOffset,
		Parallel:   c.Layout.Parallel,
	}
}

// RenderOptions converts the render section.
func (c *Config) RenderOptions() pipeline.RenderOptions {
	return pipeline.RenderOptions{
		Format:   c.Render.Format,
		Renderer: c.Render.Renderer,
		Scale:    c.Render.Scale,
		Edges:    c.Render.Edges,
		Detailed: c.Render.Detailed,
	}
}

// mapProvider serves a fixed map to koanf.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, stderrors.New("map provider does not support ReadBytes")
}
