// Package domain defines the core types, error taxonomy, and validation for
// the mediacrawl orchestrator. It acts as the validation gate in front of the
// remote crawler backend.
package domain

import (
	"fmt"
	"time"
)

// Source identifies a supported social-media platform by its short code.
type Source string

const (
	SourceXiaohongshu Source = "xhs"
	SourceDouyin      Source = "dy"
	SourceKuaishou    Source = "ks"
	SourceBilibili    Source = "bili"
	SourceWeibo       Source = "wb"
	SourceTieba       Source = "tieba"
	SourceZhihu       Source = "zhihu"
)

// SupportedSources lists every platform the backend can crawl, in display order.
var SupportedSources = []Source{
	SourceXiaohongshu, SourceDouyin, SourceKuaishou, SourceBilibili,
	SourceWeibo, SourceTieba, SourceZhihu,
}

// Valid reports whether s is one of SupportedSources.
func (s Source) Valid() bool {
	for _, v := range SupportedSources {
		if v == s {
			return true
		}
	}
	return false
}

// Mode is the kind of remote job.
type Mode string

const (
	ModeSearch  Mode = "search"  // keyword query
	ModeDetail  Mode = "detail"  // explicit content ids
	ModeCreator Mode = "creator" // author ids
)

// SupportedModes lists the accepted crawl modes.
var SupportedModes = []Mode{ModeSearch, ModeDetail, ModeCreator}

// Valid reports whether m is one of SupportedModes.
func (m Mode) Valid() bool {
	return m == ModeSearch || m == ModeDetail || m == ModeCreator
}

// Status is the lifecycle state of a remote task as last reported by the backend.
type Status string

const (
	StatusPolling Status = "polling" // backend still running
	StatusIdle    Status = "idle"    // terminal success
	StatusError   Status = "error"   // terminal failure
	StatusUnknown Status = "unknown" // backend did not report a status
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	return s == StatusIdle || s == StatusError
}

// StatusFromBackend maps the backend's raw status string onto Status.
// Anything other than "idle" or "error" means the job is still running.
func StatusFromBackend(raw string) Status {
	switch raw {
	case "idle":
		return StatusIdle
	case "error":
		return StatusError
	case "":
		return StatusUnknown
	default:
		return StatusPolling
	}
}

// StartParams are the caller inputs for starting a crawl. Exactly one of
// Keywords, PostIDs or CreatorIDs is used, selected by Mode.
type StartParams struct {
	Source     Source   `json:"source"`
	Mode       Mode     `json:"mode"`
	Keywords   string   `json:"keywords,omitempty"`
	PostIDs    string   `json:"post_ids,omitempty"`
	CreatorIDs string   `json:"creator_ids,omitempty"`
	Options    *Options `json:"options,omitempty"`
}

// CrawlOptions returns the caller's options, or DefaultOptions when none
// were given. A non-nil Options is used as is, including false flags.
func (p StartParams) CrawlOptions() Options {
	if p.Options == nil {
		return DefaultOptions
	}
	return *p.Options
}

// Identifier returns the mode-selected parameter value.
func (p StartParams) Identifier() string {
	switch p.Mode {
	case ModeSearch:
		return p.Keywords
	case ModeDetail:
		return p.PostIDs
	case ModeCreator:
		return p.CreatorIDs
	}
	return ""
}

// Options tune how the backend runs a crawl.
type Options struct {
	SaveFormat        string `json:"save_format" yaml:"save_format"`
	Headless          bool   `json:"headless" yaml:"headless"`
	EnableComments    bool   `json:"enable_comments" yaml:"enable_comments"`
	EnableSubComments bool   `json:"enable_sub_comments" yaml:"enable_sub_comments"`
	StartPage         int    `json:"start_page" yaml:"start_page"`
}

// DefaultOptions mirrors the backend's expected defaults.
var DefaultOptions = Options{
	SaveFormat:        "json",
	Headless:          true,
	EnableComments:    true,
	EnableSubComments: false,
	StartPage:         1,
}

// Task is the orchestrator's record of a started remote job.
type Task struct {
	ID         string    `json:"task_id"`
	Source     Source    `json:"source"`
	Mode       Mode      `json:"mode"`
	StartedAt  time.Time `json:"start_time"`
	Keywords   string    `json:"keywords,omitempty"`
	PostIDs    string    `json:"post_ids,omitempty"`
	CreatorIDs string    `json:"creator_ids,omitempty"`
	Status     Status    `json:"status"`
}

// Identifier returns the mode-selected parameter value, or "unknown".
func (t Task) Identifier() string {
	switch {
	case t.Keywords != "":
		return t.Keywords
	case t.PostIDs != "":
		return t.PostIDs
	case t.CreatorIDs != "":
		return t.CreatorIDs
	}
	return "unknown"
}

// TaskID builds the identifier {source}_{mode}_{unixStartSeconds}.
func TaskID(src Source, mode Mode, startedAt time.Time) string {
	return fmt.Sprintf("%s_%s_%d", src, mode, startedAt.Unix())
}
