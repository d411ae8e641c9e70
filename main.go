package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"sjsage522/machineryworker/config"
	"sjsage522/machineryworker/helpers"
	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"
	"sjsage522/machineryworker/services/cache"
	"sjsage522/machineryworker/services/exporter"
	"sjsage522/machineryworker/services/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// outputName is the base name of the files written to the output directory
const outputName = "machinery_data"

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	// Interrupts cancel the run; records collected so far are still exported
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.LoadConfig()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runOptions holds the flags that are not part of Config
type runOptions struct {
	grouped bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "machinery-scraper [flags] [Site=url ...]",
		Short: "Scrapes machinery listing pages and exports the records.",
		Long: "Scrapes the given listing URLs of the supported sites " +
			"(Agrofy, TratoresEColheitadeiras, MercadoMaquinas) and writes one record per URL.\n" +
			"URLs come from --jobs, from Site=url arguments, or from the built-in sample set.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&cfg.JobsFile, "jobs", cfg.JobsFile, "YAML file mapping site names to listing URLs")
	cmd.Flags().StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory the export files are written to")
	cmd.Flags().StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "file format: json or csv")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "maximum number of pages fetched at once")
	cmd.Flags().BoolVar(&opts.grouped, "grouped", true, "with json, also write a by-site document")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *runOptions, args []string) error {
	if logger.Default == nil {
		logger.Init()
	}
	log := logger.Default
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	// Load and validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	jobs, err := resolveJobs(cfg, args)
	if err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("concurrency", cfg.Concurrency).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Int("sites", len(jobs)).
		Msg("Starting scrape run")

	adapters := scraper.CreateAdapters(cfg, cache.Connect(cfg.MemcacheAddr))
	w := worker.NewWorker(
		adapters,
		helpers.NewLogger(cfg.ErrorLogFile),
		cfg.Concurrency,
		cfg.SiteRatePerSecond,
		cfg.SiteRateBurst,
	)

	start := time.Now()
	records := w.ScrapeAll(ctx, jobs)
	log.Info().
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Scraping finished")

	// Export even when the run was interrupted
	exportCtx := context.WithoutCancel(ctx)
	exporters, cleanup := buildExporters(exportCtx, cfg, opts)
	defer cleanup()

	if err := exporters.Export(exportCtx, records); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// resolveJobs merges the jobs file and Site=url arguments, falling back to the sample set
func resolveJobs(cfg *config.Config, args []string) (config.Jobs, error) {
	jobs := make(config.Jobs)

	if cfg.JobsFile != "" {
		fromFile, err := config.LoadJobs(cfg.JobsFile)
		if err != nil {
			return nil, err
		}
		jobs = jobs.Merge(fromFile)
	}

	fromArgs, err := config.ParsePairs(args)
	if err != nil {
		return nil, err
	}
	jobs = jobs.Merge(fromArgs)

	if len(jobs) == 0 {
		logger.Info("No jobs given, using the sample listing set")
		return config.DefaultJobs(), nil
	}
	return jobs, nil
}

// buildExporters returns the file exporter plus the Redis and Postgres sinks
// that are configured and reachable
func buildExporters(ctx context.Context, cfg *config.Config, opts *runOptions) (exporter.MultiExporter, func()) {
	var (
		exporters exporter.MultiExporter
		closers   []func()
	)

	switch cfg.OutputFormat {
	case "csv":
		exporters = append(exporters, exporter.NewCSVExporter(filepath.Join(cfg.OutputDir, outputName+".csv")))
	default:
		exporters = append(exporters, exporter.NewJSONExporter(filepath.Join(cfg.OutputDir, outputName+".json"), opts.grouped))
	}

	if cfg.RedisAddr != "" {
		redisExporter := exporter.NewRedisExporter(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, 0)
		if err := redisExporter.Ping(ctx); err != nil {
			logger.ForExporter("redis").Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Skipping Redis export")
			redisExporter.Close()
		} else {
			exporters = append(exporters, redisExporter)
			closers = append(closers, func() { redisExporter.Close() })
		}
	}

	if cfg.PostgresDSN != "" {
		pgExporter, err := exporter.NewPostgresExporter(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.ForExporter("postgres").Warn().Err(err).Msg("Skipping Postgres export")
		} else {
			exporters = append(exporters, pgExporter)
			closers = append(closers, pgExporter.Close)
		}
	}

	return exporters, func() {
		for _, c := range closers {
			c()
		}
	}
}
