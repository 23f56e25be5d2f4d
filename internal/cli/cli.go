package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/eventspan/internal/config"
	"github.com/pfrederiksen/eventspan/internal/feed"
	"github.com/pfrederiksen/eventspan/internal/logger"
	"github.com/pfrederiksen/eventspan/internal/service"
	"github.com/pfrederiksen/eventspan/internal/storage"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNoEvents = 2
)

// ErrNoEvents is returned when a command ran cleanly but found nothing
var ErrNoEvents = errors.New("no events found")

// app holds the flag values of one command tree
type app struct {
	configPath string
	dataDir    string
	format     string
	sortOrder  string
	verbose    bool
	noScrape   bool

	serviceOpts []service.Option
}

// runtime is what a command needs once flags and config are resolved
type runtime struct {
	cfg     config.Scraping
	svc     *service.Service
	store   *storage.Storage
	log     *logger.Logger
	metrics *logger.Metrics
	format  OutputFormat
	order   SortOrder
	verbose bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventspan",
		Short: "Extract event dates and times from text and web pages",
		Long: `eventspan finds exhibition runs, receptions, screenings and deadlines in
free-form event text. When the text has no dates it can fall back to scraping the
event's web page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.dataDir, "data-dir", storage.DefaultDataDir, "Data directory for the page cache")
	flags.StringVar(&a.format, "format", "text", "Output format: text, json or ics")
	flags.StringVar(&a.sortOrder, "sort", string(SortByAppearance), "Reception order in text output: appearance, start or name")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging and print metrics on exit")
	flags.BoolVar(&a.noScrape, "no-scrape", false, "Never fetch web pages")

	cmd.AddCommand(
		newExtractCmd(a),
		newScrapeCmd(a),
		newFeedCmd(a),
		newCacheCmd(a),
	)
	return cmd
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract events from text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer a.finish(cmd, rt)

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			return rt.write(cmd, []Result{{Events: rt.svc.Extract(text)}})
		},
	}
}

func newScrapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <url>",
		Short: "Fetch a web page and extract its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer a.finish(cmd, rt)

			if err := rt.loadCache(); err != nil {
				return err
			}
			parsed := rt.svc.ExtractWithFallback(cmd.Context(), "", args[0], !a.noScrape)
			if err := rt.saveCache(); err != nil {
				return err
			}

			return rt.write(cmd, []Result{{Source: args[0], Events: parsed}})
		},
	}
}

func newFeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feed <url|file|->",
		Short: "Extract events from every item of an RSS or Atom feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer a.finish(cmd, rt)

			ctx := cmd.Context()
			items, err := feed.NewReader(rt.cfg.UserAgent).Open(ctx, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			rt.log.Debug("feed loaded", logger.Fields{"source": args[0], "items": len(items)})

			if err := rt.loadCache(); err != nil {
				return err
			}
			results := make([]Result, 0, len(items))
			for _, it := range items {
				results = append(results, Result{
					Title:  it.Title,
					Source: it.Link,
					Events: rt.svc.ExtractWithFallback(ctx, it.Text, it.Link, !a.noScrape),
				})
			}
			if err := rt.saveCache(); err != nil {
				return err
			}

			return rt.write(cmd, results)
		},
	}
}

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the persisted page cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer a.finish(cmd, rt)

			rt.svc.ClearCache()
			if err := rt.store.ClearCache(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List cached page results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer a.finish(cmd, rt)

			entries, err := rt.store.LoadCache()
			if err != nil {
				return err
			}
			results := make([]Result, 0, len(entries))
			for _, u := range slices.Sorted(maps.Keys(entries)) {
				results = append(results, Result{Source: u, Events: entries[u]})
			}
			if len(results) == 0 && rt.format == FormatText {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
				return nil
			}
			return WriteOutput(cmd.OutOrStdout(), NewOutput(results), rt.format, rt.order, rt.verbose)
		},
	})

	return cmd
}

// setup loads configuration and wires the service for one command run.
func (a *app) setup(cmd *cobra.Command) (*runtime, error) {
	format, err := ParseFormat(a.format)
	if err != nil {
		return nil, err
	}
	order, err := ParseSortOrder(a.sortOrder)
	if err != nil {
		return nil, err
	}

	level := logger.LevelWarn
	if a.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)
	metrics := logger.NewMetrics()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.New(a.dataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	opts := append([]service.Option{service.WithLogger(log), service.WithMetrics(metrics)}, a.serviceOpts...)
	svc, err := service.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	log.Debug("configured", logger.Fields{
		"data_dir":  a.dataDir,
		"scraping":  cfg.Enabled && !a.noScrape,
		"cache":     cfg.CacheEnabled,
		"timeout":   cfg.Timeout().String(),
		"timezone":  cfg.Timezone,
		"max_fetch": cfg.MaxConcurrentRequests,
	})

	return &runtime{
		cfg:     cfg,
		svc:     svc,
		store:   store,
		log:     log,
		metrics: metrics,
		format:  format,
		order:   order,
		verbose: a.verbose,
	}, nil
}

// finish prints the metrics snapshot in verbose mode
func (a *app) finish(cmd *cobra.Command, rt *runtime) {
	if !a.verbose {
		return
	}
	data, err := json.MarshalIndent(rt.metrics.Snapshot(), "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "metrics: %s\n", data)
}

func (rt *runtime) loadCache() error {
	if !rt.cfg.CacheEnabled {
		return nil
	}
	entries, err := rt.store.LoadCache()
	if err != nil {
		return err
	}
	rt.svc.Cache().Load(entries)
	return nil
}

func (rt *runtime) saveCache() error {
	if !rt.cfg.CacheEnabled {
		return nil
	}
	return rt.store.SaveCache(rt.svc.Cache().Entries())
}

// write prints results and reports ErrNoEvents when every result is empty
func (rt *runtime) write(cmd *cobra.Command, results []Result) error {
	if err := WriteOutput(cmd.OutOrStdout(), NewOutput(results), rt.format, rt.order, rt.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	for _, r := range results {
		if !r.Events.IsEmpty() {
			return nil
		}
	}
	return ErrNoEvents
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoEvents):
		return ExitNoEvents
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
}
