package schema

import "github.com/WessleyAI/mediacrawl/engine/domain"

// Schema is the immutable raw-key layout of one source's records.
type Schema struct {
	Source      domain.Source
	Name        string // native display name
	DisplayName string
	DataDir     string // directory name under {projectRoot}/data
	keys        map[Field]string
}

// Key returns the raw key for f and whether the schema maps it.
func (s Schema) Key(f Field) (string, bool) {
	k, ok := s.keys[f]
	return k, ok && k != ""
}

// Keys returns a copy of the field→raw key table.
func (s Schema) Keys() map[Field]string {
	out := make(map[Field]string, len(s.keys))
	for f, k := range s.keys {
		out[f] = k
	}
	return out
}

var registry = func() map[domain.Source]Schema {
	m := make(map[domain.Source]Schema, len(builtin))
	for _, s := range builtin {
		m[s.Source] = s
	}
	return m
}()

// Get returns the schema for src, or ErrUnsupportedSource.
func Get(src domain.Source) (Schema, error) {
	s, ok := registry[src]
	if !ok {
		return Schema{}, domain.NewParamError("source", string(src), domain.ErrUnsupportedSource)
	}
	return s, nil
}

// All returns every registered schema in domain.SupportedSources order.
func All() []Schema {
	out := make([]Schema, 0, len(domain.SupportedSources))
	for _, src := range domain.SupportedSources {
		out = append(out, registry[src])
	}
	return out
}

// DisplayName returns the native platform name for src, or src itself when unknown.
func DisplayName(src domain.Source) string {
	if s, ok := registry[src]; ok {
		return s.Name
	}
	return string(src)
}
