package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/pipeline"
	"github.com/matzehuels/composeviz/pkg/store"
)

// Backend names accepted in the configuration file.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendNone   = "none"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

// Config is the contents of config.toml. Every field has a usable default,
// so a missing file is not an error.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// LayoutConfig holds the default pipeline options.
type LayoutConfig struct {
	Direction string  `toml:"direction"`
	Engine    string  `toml:"engine"`
	Dangling  string  `toml:"dangling"`
	RankSep   float64 `toml:"rank_sep"`
	NodeSep   float64 `toml:"node_sep"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"` // file, redis or none
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures "composeviz serve".
type ServerConfig struct {
	Addr             string   `toml:"addr"`
	MaxDocumentBytes int      `toml:"max_document_bytes"`
	ShareBaseURL     string   `toml:"share_base_url"`
	RequestTimeout   Duration `toml:"request_timeout"`
}

// StoreConfig selects the snapshot store used by the server.
type StoreConfig struct {
	Backend       string   `toml:"backend"` // memory, file, mongo or none
	Dir           string   `toml:"dir"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	TTL           Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("30s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			Direction: string(pipeline.DefaultDirection),
			Engine:    pipeline.DefaultEngine,
			Dangling:  pipeline.DefaultDangling,
		},
		Cache: CacheConfig{
			Backend: backendFile,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			MaxDocumentBytes: errors.DefaultMaxDocumentBytes,
			RequestTimeout:   Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Backend:       backendMemory,
			MongoDatabase: "composeviz",
			TTL:           Duration{store.DefaultTTL},
		},
	}
}

// LoadConfig reads path over the defaults. When path is empty the default
// location is used and a missing file yields the defaults; an explicitly
// named file must exist. Keys the file sets but Config does not know are
// returned so the caller can warn about them.
func LoadConfig(path string) (Config, []string, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return DefaultConfig(), nil, nil
		}
		return DefaultConfig(), nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load config %s", path)
	}

	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}

	if err := cfg.validate(); err != nil {
		return DefaultConfig(), unknown, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, unknown, nil
}

func (c *Config) validate() error {
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	if err := errors.ValidateChoice(errors.ErrCodeInvalidInput, "cache backend", c.Cache.Backend,
		[]string{backendFile, backendRedis, backendNone}); err != nil {
		return err
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis needs redis_url")
	}

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if err := errors.ValidateChoice(errors.ErrCodeInvalidInput, "store backend", c.Store.Backend,
		[]string{backendMemory, backendFile, backendMongo, backendNone}); err != nil {
		return err
	}
	if c.Store.Backend == backendMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store backend mongo needs mongo_uri")
	}

	if c.Server.MaxDocumentBytes <= 0 {
		c.Server.MaxDocumentBytes = errors.DefaultMaxDocumentBytes
	}

	// Layout values are checked by the pipeline so that flag and file
	// values produce the same errors.
	opts := c.Layout.options()
	return opts.ValidateAndSetDefaults()
}

// options converts the layout section into pipeline options.
func (l LayoutConfig) options() pipeline.Options {
	return pipeline.Options{
		Direction: l.Direction,
		Engine:    l.Engine,
		Dangling:  l.Dangling,
		RankSep:   l.RankSep,
		NodeSep:   l.NodeSep,
	}
}

// =============================================================================
// Paths
// =============================================================================

// defaultConfigPath returns $XDG_CONFIG_HOME/composeviz/config.toml, falling
// back to the platform config directory.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}
