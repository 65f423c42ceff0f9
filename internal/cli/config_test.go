package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	cverrors "github.com/matzehuels/composeviz/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, unknown, err := LoadConfig("")
	if err != nil {
		t.Fatalf("missing default file should not fail: %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v", unknown)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	dir := isolate(t)

	_, _, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if !cverrors.Is(err, cverrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "config.toml", `
[layout]
direction = "tb"
engine = "graphviz"
rank_sep = 120.5

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "12h"

[server]
addr = ":9000"
request_timeout = "5s"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
ttl = "72h"

[extra]
flag = true
`)

	cfg, unknown, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Layout.Direction != "tb" || cfg.Layout.Engine != "graphviz" || cfg.Layout.RankSep != 120.5 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Dangling != "drop" {
		t.Errorf("unset keys should keep defaults, dangling = %q", cfg.Layout.Dangling)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 12*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RequestTimeout.Duration != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxDocumentBytes != cverrors.DefaultMaxDocumentBytes {
		t.Errorf("max document bytes = %d", cfg.Server.MaxDocumentBytes)
	}
	if cfg.Store.Backend != backendMongo || cfg.Store.MongoDatabase != "composeviz" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !slices.Contains(unknown, "extra.flag") {
		t.Errorf("unknown = %v, want extra.flag", unknown)
	}
}

func TestLoadConfigXDG(t *testing.T) {
	dir := isolate(t)
	writeFile(t, mkdir(t, filepath.Join(dir, "config", appName)), "config.toml", "[server]\naddr = \":7000\"\n")

	cfg, _, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q, want :7000 from $XDG_CONFIG_HOME", cfg.Server.Addr)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[layout\n"},
		{"bad duration", "[cache]\nttl = \"soon\"\n"},
		{"cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
		{"store backend", "[store]\nbackend = \"postgres\"\n"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n"},
		{"direction", "[layout]\ndirection = \"RL\"\n"},
		{"engine", "[layout]\nengine = \"neato\"\n"},
		{"negative spacing", "[layout]\nnode_sep = -1.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeFile(t, dir, "config.toml", tt.content)
			if _, _, err := LoadConfig(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func mkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}
