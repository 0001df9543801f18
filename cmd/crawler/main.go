package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alanyang/agentpages/internal/config"
	"github.com/alanyang/agentpages/internal/logging"
	crawlsvc "github.com/alanyang/agentpages/internal/service/crawler"
	"github.com/alanyang/agentpages/internal/wire"
)

var errRegisterNeedsDatabase = errors.New("--register needs DATABASE_URL")

type options struct {
	seeds    string
	state    string
	workers  int
	timeout  time.Duration
	register bool
	logLevel string
	jsonOut  bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "crawler [strategy...]",
		Short: "Discover A2A agent cards and add them to the directory",
		Long: `Probe candidate hosts for A2A agent cards at the well-known paths.

Strategies (run in this order when none are given):
  known      - seed base URLs from the seeds file
  registry   - JSON registry indexes listing agent URLs
  platforms  - prefix x hosting-suffix candidates
  domains    - bare domains from the seeds file

State is saved after each strategy so an interrupted run resumes.`,
		ValidArgs:     crawlsvc.Strategies,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.seeds, "seeds", "", "seeds file (.yaml or .toml); built-in seeds when empty")
	f.StringVar(&opts.state, "state", "", "state file path")
	f.IntVar(&opts.workers, "workers", crawlsvc.DefaultWorkers, "concurrent requests")
	f.DurationVar(&opts.timeout, "timeout", crawlsvc.DefaultTimeout, "per-request timeout")
	f.BoolVar(&opts.register, "register", false, "register discovered agents after crawling")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&opts.jsonOut, "json", false, "print the full report as JSON")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.LoadCrawler()
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, &cfg)

	slog.SetDefault(logging.New(stderr, logging.FormatColor, config.ParseLevel(cfg.LogLevel)))

	seeds, err := crawlsvc.LoadSeeds(cfg.SeedsPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.register && cfg.DatabaseURL == "" {
		return errRegisterNeedsDatabase
	}

	crawl, err := wire.BuildCrawler(ctx, cfg, seeds)
	if err != nil {
		return err
	}
	defer crawl.Stores.Close()

	report, err := crawl.Crawler.Run(ctx, args)
	if err != nil {
		return err
	}
	if err := printReport(stdout, report, opts.jsonOut); err != nil {
		return err
	}

	if !opts.register {
		return nil
	}
	rr, err := crawl.Crawler.Register(ctx, crawl.Directory)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "registered: %d created, %d updated, %d skipped, %d failed\n",
		rr.Created, rr.Updated, rr.Skipped, rr.Failed)
	return nil
}

// applyFlags overrides env config with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, opts options, cfg *config.Crawler) {
	f := cmd.Flags()
	if f.Changed("seeds") {
		cfg.SeedsPath = opts.seeds
	}
	if f.Changed("state") {
		cfg.StatePath = opts.state
	}
	if f.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if f.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if f.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func printReport(w io.Writer, r crawlsvc.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "strategies: %s\n", strings.Join(r.Strategies, ", "))
	fmt.Fprintf(w, "this run:   %d urls checked, %d agents found\n", r.CheckedThisRun, r.FoundThisRun)
	fmt.Fprintf(w, "total:      %d urls checked, %d agents discovered\n", r.TotalChecked, r.TotalDiscovered)
	for _, a := range r.Agents {
		fmt.Fprintf(w, "  %-32s %s\n", a.Name, a.AgentCardURL)
	}
	return nil
}
