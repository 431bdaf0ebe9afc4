// Package results finds and decodes the JSON files the crawler backend
// writes under its project directory.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// Kind names a result file.
type Kind string

const (
	KindContents Kind = "contents"
	KindComments Kind = "comments"
)

// Files maps each located kind to its path. Kinds with no match are absent.
type Files map[Kind]string

// Locator resolves a task to its result files under
// {ProjectRoot}/data/{dataDir}/json.
type Locator struct {
	ProjectRoot string
	// Now supplies the date used in file names. Defaults to time.Now.
	Now func() time.Time
}

// Dir returns the json directory for src.
func (l Locator) Dir(src domain.Source) (string, error) {
	s, err := schema.Get(src)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.ProjectRoot, "data", s.DataDir, "json"), nil
}

// Locate returns the newest {mode}_{kind}_{date}*.json per kind. The date is
// the local date at lookup time, not the task's start date, so a task that
// finishes after midnight is looked up under the new day. A missing
// directory yields empty Files.
func (l Locator) Locate(t domain.Task) (Files, error) {
	dir, err := l.Dir(t.Source)
	if err != nil {
		return nil, err
	}
	files := Files{}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}

	date := l.now().Format("2006-01-02")
	for _, k := range []Kind{KindContents, KindComments} {
		pattern := filepath.Join(dir, fmt.Sprintf("%s_%s_%s*.json", t.Mode, k, date))
		path, err := newest(pattern)
		if err != nil {
			return nil, err
		}
		if path != "" {
			files[k] = path
		}
	}
	return files, nil
}

func (l Locator) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// newest returns the match of pattern with the latest mtime, or "".
func newest(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	var best string
	var bestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		// Later matches win ties, as with a stable ascending sort.
		if best == "" || !info.ModTime().Before(bestMod) {
			best, bestMod = m, info.ModTime()
		}
	}
	return best, nil
}

// Load decodes path, resolving relative paths against ProjectRoot.
func (l Locator) Load(path string) ([]schema.Record, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.ProjectRoot, path)
	}
	return Load(path)
}

// Load decodes a result file. A JSON array yields one record per element,
// with non-object elements read as empty records; a single object yields one
// record; any other JSON value yields none.
func Load(path string) ([]schema.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("results: decode %s: %w", path, err)
	}
	switch x := v.(type) {
	case []any:
		out := make([]schema.Record, 0, len(x))
		for _, e := range x {
			if rec, ok := e.(map[string]any); ok {
				out = append(out, rec)
			} else {
				out = append(out, schema.Record{})
			}
		}
		return out, nil
	case map[string]any:
		return []schema.Record{x}, nil
	}
	return []schema.Record{}, nil
}
