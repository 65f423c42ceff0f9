package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	cverrors "github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/graph"
	"github.com/matzehuels/composeviz/pkg/pipeline"
	"github.com/matzehuels/composeviz/pkg/share"
	"github.com/matzehuels/composeviz/pkg/validate"
)

const validStack = `services:
  web:
    image: nginx
    depends_on: [api]
  api:
    image: node
    volumes: ["data:/var/lib/data"]
volumes:
  data: {}
`

const brokenStack = `services:
  web:
    depends_on: [db]
`

// isolate points every XDG directory at a temp dir so tests never touch
// the real config or cache.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGraphCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	out, err := run(t, "", "graph", path)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	g, err := graph.UnmarshalGraph([]byte(out))
	if err != nil {
		t.Fatalf("output is not a graph: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", g.NodeCount())
	}
	if _, ok := g.Node(graph.ServiceID("web")); !ok {
		t.Error("missing web service node")
	}
}

func TestGraphCommandStdin(t *testing.T) {
	isolate(t)

	out, err := run(t, validStack, "graph", "-")
	if err != nil {
		t.Fatalf("graph -: %v", err)
	}
	if !strings.Contains(out, graph.ServiceID("api")) {
		t.Errorf("stdin document not parsed:\n%s", out)
	}
}

func TestGraphCommandMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, "", "graph", filepath.Join(dir, "nope.yml"))
	if !cverrors.Is(err, cverrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	out, err := run(t, "", "layout", "--direction", "tb", "--no-cache", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.UnmarshalLayout([]byte(out))
	if err != nil {
		t.Fatalf("output is not a layout: %v", err)
	}
	if l.Direction != graph.DirectionTB {
		t.Errorf("direction = %q, want TB", l.Direction)
	}
	for _, n := range l.Nodes {
		if n.Position == nil {
			t.Errorf("node %s has no position", n.ID)
		}
	}
}

func TestLayoutCommandOutputFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)
	outPath := filepath.Join(dir, "layout.json")

	out, err := run(t, "", "layout", "-o", outPath, path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when writing a file, got %q", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := graph.UnmarshalLayout(data); err != nil {
		t.Errorf("file is not a layout: %v", err)
	}
}

func TestLayoutCommandInvalidFlags(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	tests := []struct {
		args []string
		code cverrors.Code
	}{
		{[]string{"--direction", "RL"}, cverrors.ErrCodeInvalidDirection},
		{[]string{"--engine", "neato"}, cverrors.ErrCodeInvalidEngine},
		{[]string{"--dangling", "ignore"}, cverrors.ErrCodeInvalidDangling},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			args := append([]string{"layout"}, tt.args...)
			_, err := run(t, "", append(args, path)...)
			if !cverrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	out, err := run(t, "", "analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a result: %v", err)
	}
	if !res.Report.IsValid {
		t.Errorf("report should be valid: %+v", res.Report.Issues)
	}
	if len(res.Layout.Nodes) != res.Graph.NodeCount() {
		t.Errorf("layout has %d nodes, graph %d", len(res.Layout.Nodes), res.Graph.NodeCount())
	}

	// The second run is served from the file cache.
	out, err = run(t, "", "analyze", path)
	if err != nil {
		t.Fatalf("analyze again: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.AnalysisHit {
		t.Error("second analyze should hit the cache")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := isolate(t)
	valid := writeFile(t, dir, "valid.yml", validStack)
	broken := writeFile(t, dir, "broken.yml", brokenStack)

	out, err := run(t, "", "validate", valid)
	if err != nil {
		t.Fatalf("validate valid: %v", err)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("output should say valid:\n%s", out)
	}

	out, err = run(t, "", "validate", broken)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	if !strings.Contains(out, "is not defined") {
		t.Errorf("output should list the missing dependency:\n%s", out)
	}
	if !strings.Contains(out, "inspect") {
		t.Errorf("output should suggest inspect:\n%s", out)
	}
}

func TestValidateCommandJSON(t *testing.T) {
	isolate(t)

	out, err := run(t, brokenStack, "validate", "--json", "-")
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	var report validate.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a report: %v", err)
	}
	if report.IsValid || report.Count(validate.SeverityError) == 0 {
		t.Errorf("report should carry errors: %+v", report)
	}
}

func TestValidateCommandEmptyDocument(t *testing.T) {
	isolate(t)

	_, err := run(t, "   \n", "validate", "-")
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestShareCommands(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)

	token, err := run(t, "", "share", "encode", path)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	token = strings.TrimSpace(token)
	if token != share.Encode(validStack) {
		t.Errorf("token = %q, want %q", token, share.Encode(validStack))
	}

	doc, err := run(t, "", "share", "decode", token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc != validStack {
		t.Errorf("decoded = %q, want %q", doc, validStack)
	}

	link, err := run(t, "", "share", "encode", "--base", "https://example.com/editor", path)
	if err != nil {
		t.Fatalf("encode link: %v", err)
	}
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "https://example.com/editor#") {
		t.Errorf("link = %q", link)
	}
	doc, err = run(t, "", "share", "decode", link)
	if err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if doc != validStack {
		t.Errorf("decoded link = %q", doc)
	}

	if _, err := run(t, "", "share", "decode", "%%%"); !errors.Is(err, share.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestConfigFlagOverride(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "compose.yml", validStack)
	cfg := writeFile(t, dir, "config.toml", "[layout]\ndirection = \"TB\"\n\n[cache]\nbackend = \"none\"\n")

	out, err := run(t, "", "--config", cfg, "layout", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.UnmarshalLayout([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if l.Direction != graph.DirectionTB {
		t.Errorf("config direction not applied: %q", l.Direction)
	}

	out, err = run(t, "", "--config", cfg, "layout", "--direction", "LR", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l, _ = graph.UnmarshalLayout([]byte(out)); l.Direction != graph.DirectionLR {
		t.Errorf("flag should override config: %q", l.Direction)
	}
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "composeviz version") {
		t.Errorf("version output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, "", "completion", shell)
		if err != nil {
			t.Errorf("%s: %v", shell, err)
		}
		if out == "" {
			t.Errorf("%s: empty script", shell)
		}
	}
	if _, err := run(t, "", "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
