// Package config resolves mediacrawl settings from a YAML file, a .env file,
// the environment and built-in defaults.
//
// Precedence, highest first: explicit parameters (applied by the caller),
// environment variables, .env entries, the YAML file, defaults. An empty
// project root after all layers is auto-detected.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

// Environment keys.
const (
	EnvAPIURL       = "MEDIACRAWLER_API_URL"
	EnvProjectRoot  = "MEDIACRAWLER_PATH"
	EnvTimeout      = "MEDIACRAWLER_TIMEOUT"
	EnvPollInterval = "MEDIACRAWLER_POLL_INTERVAL"
	EnvNATSURL      = "NATS_URL"
	EnvPort         = "PORT"
)

// DefaultDotEnv is read when LoadOptions.DotEnv is empty. A missing default
// file is not an error.
const DefaultDotEnv = ".env"

// Config is the resolved configuration.
type Config struct {
	APIURL       string         `yaml:"api_url"`
	ProjectRoot  string         `yaml:"project_root"`
	Timeout      time.Duration  `yaml:"timeout"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	NATSURL      string         `yaml:"nats_url"`
	Port         string         `yaml:"port"`
	Crawl        domain.Options `yaml:"crawl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:       "http://localhost:8080",
		Timeout:      600 * time.Second,
		PollInterval: 2 * time.Second,
		Port:         "8090",
		Crawl:        domain.DefaultOptions,
	}
}

// LoadOptions locate the optional files and the auto-detect inputs.
type LoadOptions struct {
	// File is a YAML config file. Empty means none.
	File string
	// DotEnv is a .env file. Empty means DefaultDotEnv.
	DotEnv string
	// KnownPaths are checked, in order, before walking up from WorkDir.
	// Nil means DefaultKnownPaths().
	KnownPaths []string
	// WorkDir is where the main.py walk starts. Empty means os.Getwd.
	WorkDir string
	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string
}

// Load resolves a Config.
func Load(lo LoadOptions) (Config, error) {
	cfg := Default()

	if lo.File != "" {
		raw, err := os.ReadFile(lo.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", lo.File, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", lo.File, err)
		}
	}

	dotenv, err := readDotEnv(lo.DotEnv)
	if err != nil {
		return Config{}, err
	}
	getenv := lo.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if cfg.ProjectRoot == "" {
		known := lo.KnownPaths
		if known == nil {
			known = DefaultKnownPaths()
		}
		wd := lo.WorkDir
		if wd == "" {
			if wd, err = os.Getwd(); err != nil {
				return Config{}, fmt.Errorf("config: getwd: %w", err)
			}
		}
		cfg.ProjectRoot = DetectProjectRoot(known, wd)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultDotEnv
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return vals, nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	if v := lookup(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := lookup(EnvProjectRoot); v != "" {
		c.ProjectRoot = v
	}
	if v := lookup(EnvNATSURL); v != "" {
		c.NATSURL = v
	}
	if v := lookup(EnvPort); v != "" {
		c.Port = v
	}
	for key, dst := range map[string]*time.Duration{EnvTimeout: &c.Timeout, EnvPollInterval: &c.PollInterval} {
		v := lookup(key)
		if v == "" {
			continue
		}
		d, err := ParseSeconds(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// ParseSeconds accepts a Go duration ("90s", "10m") or a bare number of
// seconds ("600", "1.5").
func ParseSeconds(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api_url %q: %w", c.APIURL, domain.ErrInvalidParameter)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive: %w", domain.ErrInvalidParameter)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive: %w", domain.ErrInvalidParameter)
	}
	return nil
}

// DefaultKnownPaths are common MediaCrawler checkout locations.
func DefaultKnownPaths() []string {
	paths := []string{"/opt/MediaCrawler", "/srv/MediaCrawler"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{
			filepath.Join(home, "MediaCrawler"),
			filepath.Join(home, "Desktop", "project", "MediaCrawler"),
		}, paths...)
	}
	return paths
}

// DetectProjectRoot returns the first existing directory in known, else the
// nearest ancestor of start (inclusive) holding main.py, else start.
func DetectProjectRoot(known []string, start string) string {
	for _, p := range known {
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	dir := start
	for {
		if fi, err := os.Stat(filepath.Join(dir, "main.py")); err == nil && !fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
