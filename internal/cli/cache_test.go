package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composeviz/pkg/cache"
)

func TestCacheDirDefault(t *testing.T) {
	dir := isolate(t)
	c := New(&strings.Builder{}, log.InfoLevel)

	got, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	want := filepath.Join(dir, "cache", appName)
	if got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	isolate(t)
	c := New(&strings.Builder{}, log.InfoLevel)
	c.Config.Cache.Dir = "/srv/composeviz-cache"

	got, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/srv/composeviz-cache" {
		t.Errorf("cacheDir() = %q", got)
	}
}

func TestNewCacheBackends(t *testing.T) {
	isolate(t)
	c := New(&strings.Builder{}, log.InfoLevel)
	ctx := context.Background()

	ch, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("default backend = %T, want *cache.FileCache", ch)
	}

	ch, err = c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("--no-cache backend = %T, want cache.NullCache", ch)
	}

	c.Config.Cache.Backend = backendNone
	ch, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("none backend = %T, want cache.NullCache", ch)
	}

	c.Config.Cache.Backend = backendRedis
	c.Config.Cache.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := c.newCache(ctx, false); err == nil {
		t.Error("unreachable redis should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	out, err := run(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	cacheDir := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	if _, err := run(t, "", "analyze", path); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "", "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared") || strings.Contains(out, "Cleared 0 ") {
		t.Errorf("clear should remove entries:\n%s", out)
	}

	out, err = run(t, "", "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 0 ") {
		t.Errorf("second clear should find nothing:\n%s", out)
	}
}
