package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvProjectRoot, "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeContents(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "search_contents_2024-03-05.json")
	body := `[
		{"title":"a","nickname":"alice","liked_count":100,"time":1709602200},
		{"title":"b","nickname":"bob","liked_count":200,"time":1709605800}
	]`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSourcesCommand(t *testing.T) {
	out, err := execute(t, "sources", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var rows []map[string]string
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != len(domain.SupportedSources) {
		t.Fatalf("expected %d sources, got %d", len(domain.SupportedSources), len(rows))
	}
	if rows[0]["code"] != "xhs" || rows[0]["name"] != "小红书" {
		t.Errorf("unexpected first row %v", rows[0])
	}
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeContents(t)
	out, err := execute(t, "analyze", "-s", "xhs", "--file", path, "--kind", "summary", "--format", "json", "--project-root", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var sum struct {
		TotalItems int `json:"total_items"`
		Engagement struct {
			Likes struct {
				Average float64 `json:"average"`
			} `json:"likes"`
		} `json:"engagement_metrics"`
	}
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if sum.TotalItems != 2 || sum.Engagement.Likes.Average != 150 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestReportCommand(t *testing.T) {
	path := writeContents(t)
	out, err := execute(t, "report", "-s", "xhs", "--contents", path, "-o", "-", "--project-root", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<html", "Posting hours", "Most active authors"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report output", want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestCrawlFlags_OverrideOnlyWhenSet(t *testing.T) {
	app.cfg = config.Default()
	app.cfg.Crawl.Headless = false
	app.cfg.Crawl.EnableComments = false

	var cf crawlFlags
	cmd := &cobra.Command{Use: "x"}
	cf.register(cmd.Flags())
	if err := cmd.ParseFlags([]string{"-s", "dy", "-m", "detail", "--post-ids", "1,2", "--no-comments=false", "--start-page", "3"}); err != nil {
		t.Fatal(err)
	}
	p := cf.params(cmd)
	if p.Source != domain.SourceDouyin || p.Mode != domain.ModeDetail || p.PostIDs != "1,2" {
		t.Errorf("unexpected params %+v", p)
	}
	if !p.Options.EnableComments {
		t.Error("expected explicit --no-comments=false to enable comments")
	}
	if p.Options.Headless {
		t.Error("expected configured headless=false to survive")
	}
	if p.Options.StartPage != 3 || p.Options.EnableSubComments {
		t.Errorf("unexpected options %+v", p.Options)
	}
}

func TestCrawlFlags_ExplicitFalseOptionsKept(t *testing.T) {
	app.cfg = config.Default()
	app.cfg.Crawl.Headless = false
	app.cfg.Crawl.EnableComments = false

	var cf crawlFlags
	cmd := &cobra.Command{Use: "x"}
	cf.register(cmd.Flags())
	if err := cmd.ParseFlags([]string{"-s", "xhs", "-k", "咖啡"}); err != nil {
		t.Fatal(err)
	}
	p := cf.params(cmd)
	if p.Options == nil {
		t.Fatal("expected configured options to be passed through")
	}
	if got := p.CrawlOptions(); got.Headless || got.EnableComments {
		t.Errorf("expected all-false flags to survive, got %+v", got)
	}
}

func TestCrawlFlags_NoMaxItems(t *testing.T) {
	var cf crawlFlags
	cmd := &cobra.Command{Use: "x"}
	cf.register(cmd.Flags())
	if cmd.Flags().Lookup("max-items") != nil {
		t.Fatal("expected no max-items flag")
	}
	if err := cmd.ParseFlags([]string{"-s", "xhs", "--max-items", "5"}); err == nil {
		t.Error("expected unknown flag error for --max-items")
	}
}
