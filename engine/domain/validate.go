package domain

import (
	"fmt"
	"strings"
)

// ValidateSource checks that src is one of SupportedSources.
func ValidateSource(src Source) error {
	if !src.Valid() {
		return NewParamError("source", string(src), ErrUnsupportedSource)
	}
	return nil
}

// ValidateStart checks source, mode and the mode-required parameter.
// An unknown source is reported as ErrInvalidParameter wrapping ErrUnsupportedSource,
// so both sentinels match.
func ValidateStart(p StartParams) error {
	if !p.Source.Valid() {
		return NewParamError("source", string(p.Source), fmt.Errorf("%w: %w", ErrInvalidParameter, ErrUnsupportedSource))
	}
	if !p.Mode.Valid() {
		return NewParamError("mode", string(p.Mode), ErrInvalidParameter)
	}

	var field, value string
	switch p.Mode {
	case ModeSearch:
		field, value = "keywords", p.Keywords
	case ModeDetail:
		field, value = "post_ids", p.PostIDs
	case ModeCreator:
		field, value = "creator_ids", p.CreatorIDs
	}
	if strings.TrimSpace(value) == "" {
		return NewParamError(field, value, ErrInvalidParameter)
	}
	return nil
}
