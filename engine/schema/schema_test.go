package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{"1.2k", 1200},
		{"1.2K", 1200},
		{"3万", 30000},
		{"1万", 10000},
		{"2.5w", 25000},
		{"2.5W", 25000},
		{"abc", 0},
		{"", 0},
		{"   ", 0},
		{nil, 0},
		{150, 150},
		{int64(7), 7},
		{float64(42), 42},
		{3.9, 3},
		{"88", 88},
		{" 12 ", 12},
		{"12.7", 12},
		{"1e3", 1000},
		{"k", 0},
		{"1.2万+", 0},
		{"NaN", 0},
		{"inf", 0},
		{json.Number("99"), 99},
		{json.Number("1.5"), 1},
		{true, 0},
		{[]any{1}, 0},
	}
	for _, tc := range cases {
		if got := ParseCount(tc.in); got != tc.want {
			t.Errorf("ParseCount(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestGet_AllSupportedSources(t *testing.T) {
	for _, src := range domain.SupportedSources {
		s, err := Get(src)
		if err != nil {
			t.Fatalf("Get(%s): %v", src, err)
		}
		if s.Source != src {
			t.Errorf("expected source %s, got %s", src, s.Source)
		}
		for _, f := range Fields {
			if _, ok := s.Key(f); !ok {
				t.Errorf("%s: field %s unmapped", src, f)
			}
		}
		if s.DataDir == "" || s.Name == "" || s.DisplayName == "" {
			t.Errorf("%s: incomplete schema %+v", src, s)
		}
	}
	if len(All()) != len(domain.SupportedSources) {
		t.Errorf("expected %d schemas, got %d", len(domain.SupportedSources), len(All()))
	}
}

func TestGet_Unsupported(t *testing.T) {
	_, err := Get("myspace")
	if !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
	if _, err := GetField(Record{}, "myspace", FieldLikeCount, 0); !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource from GetField, got %v", err)
	}
}

func TestSourceSpecificKeys(t *testing.T) {
	cases := []struct {
		src  domain.Source
		f    Field
		want string
	}{
		{domain.SourceBilibili, FieldCollectCount, "video_favorite_count"},
		{domain.SourceBilibili, FieldCreatorFans, "total_fans"},
		{domain.SourceWeibo, FieldContentTitle, "content"},
		{domain.SourceWeibo, FieldCollectCount, "liked_count"},
		{domain.SourceZhihu, FieldLikeCount, "voteup_count"},
		{domain.SourceTieba, FieldUserName, "username"},
		{domain.SourceDouyin, FieldContentID, "aweme_id"},
	}
	for _, tc := range cases {
		s, _ := Get(tc.src)
		if got, _ := s.Key(tc.f); got != tc.want {
			t.Errorf("%s/%s = %q, want %q", tc.src, tc.f, got, tc.want)
		}
	}
	dirs := map[domain.Source]string{
		domain.SourceDouyin: "douyin", domain.SourceKuaishou: "kuaishou",
		domain.SourceBilibili: "bilibili", domain.SourceWeibo: "weibo",
	}
	for src, want := range dirs {
		s, _ := Get(src)
		if s.DataDir != want {
			t.Errorf("%s data dir = %s, want %s", src, s.DataDir, want)
		}
	}
}

func TestGetField_SoftFail(t *testing.T) {
	rec := Record{"liked_count": "10"}
	for _, src := range domain.SupportedSources {
		v, err := GetField(rec, src, Field("nonexistent_semantic_field"), 42)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", src, err)
		}
		if v != 42 {
			t.Errorf("%s: expected default 42, got %v", src, v)
		}
	}
}

func TestGetField_CountCoercion(t *testing.T) {
	rec := Record{"liked_count": "1.2k", "comment_count": nil, "share_count": ""}
	cases := []struct {
		f    Field
		want int64
	}{
		{FieldLikeCount, 1200},
		{FieldCommentCount, 0},
		{FieldShareCount, 0},
		{FieldCollectCount, 0}, // absent
	}
	for _, tc := range cases {
		v, err := GetField(rec, domain.SourceXiaohongshu, tc.f, 99)
		if err != nil {
			t.Fatal(err)
		}
		if v != tc.want {
			t.Errorf("%s = %v (%T), want %d", tc.f, v, v, tc.want)
		}
	}
}

func TestAccessor_NonCountFields(t *testing.T) {
	acc, err := For(domain.SourceXiaohongshu)
	if err != nil {
		t.Fatal(err)
	}
	rec := Record{"title": "hello", "nickname": nil, "note_id": float64(12)}

	if got := acc.Value(rec, FieldContentTitle, ""); got != "hello" {
		t.Errorf("expected hello, got %v", got)
	}
	if got := acc.Value(rec, FieldUserName, "Unknown"); got != "Unknown" {
		t.Errorf("expected default for null, got %v", got)
	}
	if got := acc.Value(rec, FieldContentURL, "none"); got != "none" {
		t.Errorf("expected default for absent, got %v", got)
	}
	if got := acc.String(rec, FieldContentID, ""); got != "12" {
		t.Errorf("expected numeric id formatted, got %q", got)
	}
	if got := acc.String(Record{"title": map[string]any{}}, FieldContentTitle, "d"); got != "d" {
		t.Errorf("expected default for composite, got %q", got)
	}
}

func TestAccessor_WeiboReusesLikesForCollects(t *testing.T) {
	acc, _ := For(domain.SourceWeibo)
	rec := Record{"liked_count": "3万", "content": "正文"}
	if got := acc.Count(rec, FieldCollectCount); got != 30000 {
		t.Errorf("expected collects from liked_count, got %d", got)
	}
	if got := acc.String(rec, FieldContentTitle, ""); got != "正文" {
		t.Errorf("expected title from content, got %q", got)
	}
}

func TestAccessor_UnmappedCountIsZero(t *testing.T) {
	acc := NewAccessor(Schema{Source: "custom", keys: map[Field]string{FieldLikeCount: "likes"}})
	if got := acc.Count(Record{"shares": 5}, FieldShareCount); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := acc.Count(Record{"likes": 5}, FieldLikeCount); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestSchemaKeysIsCopy(t *testing.T) {
	s, _ := Get(domain.SourceXiaohongshu)
	keys := s.Keys()
	keys[FieldLikeCount] = "tampered"
	if k, _ := s.Key(FieldLikeCount); k != "liked_count" {
		t.Errorf("schema mutated through Keys(): %s", k)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(domain.SourceXiaohongshu); got != "小红书" {
		t.Errorf("unexpected name %s", got)
	}
	if got := DisplayName("other"); got != "other" {
		t.Errorf("expected passthrough, got %s", got)
	}
}
