// Command mediacrawl drives a MediaCrawler backend and analyzes what it
// collects.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/pkg/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configFile  string
	dotEnv      string
	apiURL      string
	projectRoot string
	logLevel    string
	format      string
}

// app is populated by the root PersistentPreRunE.
var app struct {
	cfg    config.Config
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "mediacrawl",
	Short: "Run MediaCrawler crawls and analyze the results",
	Long: "mediacrawl starts crawl jobs on a MediaCrawler API server, waits for them,\n" +
		"and summarizes the JSON files they write.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configFile, "config", "", "YAML config file")
	f.StringVar(&rootFlags.dotEnv, "env-file", "", "dotenv file (default .env if present)")
	f.StringVar(&rootFlags.apiURL, "api-url", "", "MediaCrawler API base URL (overrides "+config.EnvAPIURL+")")
	f.StringVar(&rootFlags.projectRoot, "project-root", "", "MediaCrawler checkout holding data/ (overrides "+config.EnvProjectRoot+")")
	f.StringVar(&rootFlags.logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&rootFlags.format, "format", "table", "output: table, markdown or json")

	rootCmd.AddCommand(crawlCmd, startCmd, analyzeCmd, reportCmd, healthCmd, serveCmd, sourcesCmd, eventsCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	level, err := parseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	app.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(app.logger)

	cfg, err := config.Load(config.LoadOptions{File: rootFlags.configFile, DotEnv: rootFlags.dotEnv})
	if err != nil {
		return err
	}
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.projectRoot != "" {
		cfg.ProjectRoot = rootFlags.projectRoot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg
	app.logger.Debug("config loaded", "api_url", cfg.APIURL, "project_root", cfg.ProjectRoot)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
