// Package config loads the lightlayer configuration from TOML.
//
// A configuration file has three tables and a node list:
//
//	[engine]
//	max_channels = 12288
//	max_mappings = 4096
//	channels_per_light = 3
//	color_order = "GRB"
//	safe_mode = false
//	settle_delay = "100ms"
//	fps = 50
//	scripts_dir = "scripts"
//
//	[store]
//	backend = "file"          # null | file | redis | mongo
//	dir = "~/.cache/lightlayer"
//	scope = "stage-left:"
//
//	[server]
//	addr = ":8080"
//
//	[[nodes]]
//	name = "Panel"
//	  [[nodes.controls]]
//	  name = "width"
//	  value = 16
//	  min = 1
//	  max = 2048
//
// Nodes are placed into consecutive slots in file order unless they set an
// explicit index.
package config

import (
	"bytes"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/store"
)

// FileName is the configuration file looked up by default.
const FileName = "lightlayer.toml"

// Config is the complete configuration.
type Config struct {
	Engine Engine `toml:"engine"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
	Nodes  []Node `toml:"nodes"`
}

// Engine configures the layers and the frame loop.
type Engine struct {
	MaxChannels      int      `toml:"max_channels"`
	MaxMappings      int      `toml:"max_mappings"`
	ChannelsPerLight int      `toml:"channels_per_light"`
	ColorOrder       string   `toml:"color_order"`
	SafeMode         bool     `toml:"safe_mode"`
	SettleDelay      Duration `toml:"settle_delay"`
	FPS              int      `toml:"fps"`
	ScriptsDir       string   `toml:"scripts_dir"`
}

// Store configures preset persistence.
type Store struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	Scope   string   `toml:"scope"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP control surface.
type Server struct {
	Addr string `toml:"addr"`
}

// Node is one node slot. A nil Index means "next slot".
type Node struct {
	Index    *int          `toml:"index,omitempty" json:"index,omitempty"`
	Name     string        `toml:"name" json:"name"`
	Controls node.Controls `toml:"controls,omitempty" json:"controls,omitempty"`
}

// Duration is a time.Duration written as a string such as "100ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration of a stock controller with no nodes.
func Default() *Config {
	return &Config{
		Engine: Engine{
			MaxChannels:      layer.DefaultMaxChannels,
			MaxMappings:      layer.DefaultMaxMappings,
			ChannelsPerLight: lights.DefaultChannelsPerLight,
			ColorOrder:       "RGB",
			SettleDelay:      Duration{layer.DefaultSettleDelay},
			FPS:              50,
		},
		Store: Store{
			Backend: store.BackendFile,
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads and validates the file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(data)
}

// Parse decodes and validates TOML on top of Default. Unknown keys are
// rejected so that typos do not pass silently.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	for _, key := range md.Undecoded() {
		// Control values are free-form; their inner keys belong to the node.
		if slices.Contains(key, "value") {
			continue
		}
		return nil, lerrors.New(lerrors.ErrCodeInvalidConfig, "unknown config key %q", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.MaxChannels < lights.PackedSize:
		return invalid("engine.max_channels must be at least %d, got %d", lights.PackedSize, e.MaxChannels)
	case e.MaxMappings <= 0:
		return invalid("engine.max_mappings must be positive, got %d", e.MaxMappings)
	case e.ChannelsPerLight < 3:
		return invalid("engine.channels_per_light must be at least 3, got %d", e.ChannelsPerLight)
	case e.FPS <= 0 || e.FPS > 1000:
		return invalid("engine.fps must be in 1..1000, got %d", e.FPS)
	case e.SettleDelay.Duration < 0:
		return invalid("engine.settle_delay must not be negative")
	}
	if _, err := lights.ParseColorOrder(e.ColorOrder); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeInvalidConfig, err, "engine.color_order")
	}

	switch c.Store.Backend {
	case "", store.BackendNull, store.BackendFile, store.BackendRedis, store.BackendMongo:
	default:
		return invalid("store.backend %q is not one of null, file, redis, mongo", c.Store.Backend)
	}

	for i, n := range c.Nodes {
		if err := lerrors.ValidateNodeName(n.Name); err != nil {
			return lerrors.Wrap(lerrors.ErrCodeInvalidConfig, err, "nodes[%d]", i)
		}
		if n.Index != nil && *n.Index < 0 {
			return invalid("nodes[%d] (%s): index must not be negative", i, n.Name)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return lerrors.New(lerrors.ErrCodeInvalidConfig, format, args...)
}

// Layer returns the physical layer options described by the engine table.
func (c *Config) Layer() layer.Options {
	offsets, err := lights.ParseColorOrder(c.Engine.ColorOrder)
	if err != nil {
		offsets = lights.DefaultOffsets
	}
	return layer.Options{
		MaxChannels:      c.Engine.MaxChannels,
		MaxMappings:      c.Engine.MaxMappings,
		ChannelsPerLight: c.Engine.ChannelsPerLight,
		Offsets:          &offsets,
		SafeMode:         c.Engine.SafeMode,
		SettleDelay:      c.Engine.SettleDelay.Duration,
	}
}

// StoreOptions returns the backend options described by the store table.
func (c *Config) StoreOptions() store.Options {
	s := c.Store
	return store.Options{
		Backend:         s.Backend,
		Dir:             s.Dir,
		RedisAddr:       s.RedisAddr,
		RedisPassword:   s.RedisPassword,
		RedisDB:         s.RedisDB,
		MongoURI:        s.MongoURI,
		MongoDatabase:   s.MongoDatabase,
		MongoCollection: s.MongoCollection,
	}
}

// FrameInterval is the time between two frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Engine.FPS)
}
