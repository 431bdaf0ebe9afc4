package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func baseOpts(t *testing.T) LoadOptions {
	dir := t.TempDir()
	return LoadOptions{
		DotEnv:     writeFile(t, dir, ".env", ""),
		KnownPaths: []string{},
		WorkDir:    dir,
		Getenv:     envMap(nil),
	}
}

func TestLoad_Defaults(t *testing.T) {
	lo := baseOpts(t)
	cfg, err := Load(lo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.ProjectRoot = lo.WorkDir
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Timeout != 600*time.Second || cfg.PollInterval != 2*time.Second {
		t.Errorf("unexpected durations %v %v", cfg.Timeout, cfg.PollInterval)
	}
}

func TestLoad_Precedence(t *testing.T) {
	lo := baseOpts(t)
	dir := filepath.Dir(lo.DotEnv)
	lo.File = writeFile(t, dir, "mediacrawl.yaml", `
api_url: http://file:1
project_root: /from/file
timeout: 90s
crawl:
  headless: false
`)
	lo.DotEnv = writeFile(t, dir, "custom.env", "MEDIACRAWLER_API_URL=http://dotenv:2\nMEDIACRAWLER_PATH=/from/dotenv\n")
	lo.Getenv = envMap(map[string]string{EnvAPIURL: "http://env:3"})

	cfg, err := Load(lo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://env:3" {
		t.Errorf("expected env to win, got %s", cfg.APIURL)
	}
	if cfg.ProjectRoot != "/from/dotenv" {
		t.Errorf("expected .env over file, got %s", cfg.ProjectRoot)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("expected file timeout, got %v", cfg.Timeout)
	}
	if cfg.Crawl.Headless {
		t.Error("expected headless from file")
	}
	if !cfg.Crawl.EnableComments || cfg.Crawl.SaveFormat != "json" {
		t.Errorf("expected defaults kept for unset crawl keys, got %+v", cfg.Crawl)
	}
}

func TestLoad_EnvDurations(t *testing.T) {
	lo := baseOpts(t)
	lo.Getenv = envMap(map[string]string{EnvTimeout: "120", EnvPollInterval: "500ms"})
	cfg, err := Load(lo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeout != 120*time.Second || cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("unexpected durations %v %v", cfg.Timeout, cfg.PollInterval)
	}

	lo.Getenv = envMap(map[string]string{EnvTimeout: "soon"})
	if _, err := Load(lo); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	lo := baseOpts(t)
	lo.File = filepath.Join(lo.WorkDir, "absent.yaml")
	if _, err := Load(lo); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist for config file, got %v", err)
	}

	lo = baseOpts(t)
	lo.DotEnv = filepath.Join(lo.WorkDir, "absent.env")
	if _, err := Load(lo); err == nil {
		t.Error("expected error for explicit missing .env")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"no scheme":         {EnvAPIURL: "localhost:8080"},
		"zero timeout":      {EnvTimeout: "0"},
		"negative interval": {EnvPollInterval: "-1s"},
	}
	for name, env := range cases {
		lo := baseOpts(t)
		lo.Getenv = envMap(env)
		if _, err := Load(lo); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}

func TestDetectProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := DetectProjectRoot(nil, nested); got != root {
		t.Errorf("expected walk-up to %s, got %s", root, got)
	}

	known := t.TempDir()
	if got := DetectProjectRoot([]string{filepath.Join(root, "missing"), known}, nested); got != known {
		t.Errorf("expected known path %s, got %s", known, got)
	}

	bare := t.TempDir()
	if got := DetectProjectRoot(nil, bare); got != bare {
		t.Errorf("expected fallback to start, got %s", got)
	}
}

func TestParseSeconds(t *testing.T) {
	cases := map[string]time.Duration{
		"600": 600 * time.Second,
		"1.5": 1500 * time.Millisecond,
		"10m": 10 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseSeconds(in)
		if err != nil || got != want {
			t.Errorf("ParseSeconds(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
