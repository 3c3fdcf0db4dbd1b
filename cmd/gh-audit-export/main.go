// Command gh-audit-export fetches audit-log entries from the GitHub
// enterprise REST API, following pagination until exhaustion, and writes
// them to a CSV or JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/audittools/gh-audit-export/internal/config"
	"github.com/audittools/gh-audit-export/pkg/auth"
	"github.com/audittools/gh-audit-export/pkg/client"
	"github.com/audittools/gh-audit-export/pkg/export"
	"github.com/audittools/gh-audit-export/pkg/logging"
	"github.com/audittools/gh-audit-export/pkg/pagination"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

func run(args []string, stdin io.Reader, stderr io.Writer) int {
	fs := flag.NewFlagSet("gh-audit-export", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "path to a YAML config file")
	enterprise := fs.String("enterprise", "", "enterprise name to query")
	startDate := fs.String("start-date", "", "only events created at or after this date (YYYY-MM-DD)")
	action := fs.String("action", "", "action filter, e.g. git.clone")
	include := fs.String("include", "", "event types to include: web, git or all")
	format := fs.String("format", "", "output format: csv or json")
	output := fs.String("output", "", "output file path (default github_audit_<timestamp>.<format>)")
	perPage := fs.Int("per-page", 0, "records per page (1-100)")
	timeout := fs.Duration("timeout", 0, "per-request timeout, e.g. 45s")
	csvAll := fs.Bool("csv-all-columns", false, "CSV header from the union of all record keys instead of the first record")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	logPretty := fs.Bool("log-pretty", false, "human-readable log output")
	noPrompt := fs.Bool("no-prompt", false, "never prompt for the token interactively")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(stderr, "Configuration error:", err)
		return 1
	}

	// Flags set on the command line take precedence over file and env
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "enterprise":
			cfg.Enterprise = *enterprise
		case "start-date":
			cfg.StartDate = *startDate
		case "action":
			cfg.Action = *action
		case "include":
			cfg.Include = *include
		case "format":
			cfg.Format = *format
		case "output":
			cfg.OutputPath = *output
		case "per-page":
			cfg.PerPage = *perPage
		case "timeout":
			cfg.Timeout = *timeout
		case "csv-all-columns":
			cfg.CSVAllColumns = *csvAll
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-pretty":
			cfg.LogPretty = *logPretty
		case "no-prompt":
			cfg.NoPrompt = *noPrompt
		}
	})

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(stderr, "Configuration error:", err)
		}
		return 1
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: stderr,
	})

	// Credential resolution happens before any network call
	token, err := auth.Resolve(auth.Options{
		Prompt: !cfg.NoPrompt,
		Input:  stdin,
		Output: stderr,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Credential resolution failed")
		return 1
	}

	clientCfg := client.DefaultConfig(token)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.Timeout = cfg.Timeout

	apiClient, err := client.New(clientCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Client setup failed")
		return 1
	}

	start := time.Now()
	fetcher := pagination.NewFetcher(apiClient)
	results, err := fetcher.FetchAll(context.Background(), buildQueryURL(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("Fetch failed - no output written")
		return 1
	}

	outFormat, err := export.ParseFormat(cfg.Format)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid output format")
		return 1
	}

	outPath := cfg.OutputPath
	if outPath == "" {
		outPath = export.DefaultFilename(outFormat)
	}

	if err := export.Write(results, export.Options{
		Format:     outFormat,
		Path:       outPath,
		AllColumns: cfg.CSVAllColumns,
	}); err != nil {
		logger.Error().Err(err).Msg("Export failed")
		return 1
	}

	state := apiClient.RateLimit()
	logger.Info().
		Int("records", len(results)).
		Str("output", outPath).
		Dur("duration", time.Since(start)).
		Int("rate_remaining", state.Remaining).
		Msg("Export complete")

	return 0
}

// buildQueryURL assembles the audit-log endpoint path with the search
// phrase, include filter and page size. The phrase combines the start
// date and action filters the way the API's search syntax expects.
func buildQueryURL(cfg *config.Config) string {
	var phrases []string
	if cfg.StartDate != "" {
		phrases = append(phrases, "created:>="+cfg.StartDate)
	}
	if cfg.Action != "" {
		phrases = append(phrases, "action:"+cfg.Action)
	}

	q := url.Values{}
	if len(phrases) > 0 {
		q.Set("phrase", strings.Join(phrases, " "))
	}
	if cfg.Include != "" {
		q.Set("include", cfg.Include)
	}
	q.Set("per_page", strconv.Itoa(cfg.PerPage))

	return "/enterprises/" + url.PathEscape(cfg.Enterprise) + "/audit-log?" + q.Encode()
}
