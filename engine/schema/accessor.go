package schema

import (
	"fmt"
	"strconv"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

// Record is one decoded result-file entry. Its layout is source-specific and
// only interpreted through an Accessor.
type Record = map[string]any

// GetField reads semantic field f from rec using src's schema. A field the
// schema does not map yields def; only an unsupported source is an error.
func GetField(rec Record, src domain.Source, f Field, def any) (any, error) {
	acc, err := For(src)
	if err != nil {
		return nil, err
	}
	return acc.Value(rec, f, def), nil
}

// Accessor reads normalized values from records of one source.
type Accessor struct {
	schema Schema
}

// For returns an Accessor bound to src's schema.
func For(src domain.Source) (*Accessor, error) {
	s, err := Get(src)
	if err != nil {
		return nil, err
	}
	return &Accessor{schema: s}, nil
}

// NewAccessor binds an Accessor to an explicit schema.
func NewAccessor(s Schema) *Accessor { return &Accessor{schema: s} }

// Schema returns the bound schema.
func (a *Accessor) Schema() Schema { return a.schema }

// Value returns the raw value of f, or def when the schema has no mapping.
// Count fields are coerced with ParseCount, so a missing or null count is 0.
// For other fields a missing or null key yields def.
func (a *Accessor) Value(rec Record, f Field, def any) any {
	key, ok := a.schema.Key(f)
	if !ok {
		return def
	}
	raw, present := rec[key]
	if f.IsCount() {
		if !present {
			return int64(0)
		}
		return ParseCount(raw)
	}
	if !present || raw == nil {
		return def
	}
	return raw
}

// Count returns f as an integer; unmapped or absent fields are 0.
func (a *Accessor) Count(rec Record, f Field) int64 {
	if _, ok := a.schema.Key(f); !ok {
		return 0
	}
	return ParseCount(a.Value(rec, f, nil))
}

// String returns f as text. Non-string scalars are formatted; absent,
// null or composite values yield def.
func (a *Accessor) String(rec Record, f Field, def string) string {
	switch v := a.Value(rec, f, nil).(type) {
	case nil:
		return def
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int, int64, bool:
		return fmt.Sprint(v)
	default:
		return def
	}
}
