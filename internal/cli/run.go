package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/incidentmerge/internal/logging"
	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Merge every source table into the master incident table",
	Long: `Run reads every *.csv file in the input directory, maps rows from the known
sources (violence_project, motherjones, stanford_msa, gva) onto canonical
records, collapses exact duplicates by fingerprint, merges near-duplicates,
and writes the master table.

Sources that cannot be read are reported and skipped.

Example:
  incidentmerge run
  incidentmerge run --input-dir data/raw --output data/master_incidents.csv
  incidentmerge run --driver sqlite --output data/incidents.db
  incidentmerge run --driver postgres --dsn postgres://localhost:5432/incidents`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("input-dir", "", "directory holding source CSV files")
	f.String("output", "", "output path (CSV file or SQLite database)")
	f.String("driver", "", "output driver (csv, sqlite, postgres)")
	f.String("dsn", "", "PostgreSQL connection string")
	f.String("table", "", "output table name for database drivers")
	f.Int("workers", 0, "worker count for loading and matching")
	f.Bool("no-cache", false, "disable the decoded-source cache")
	f.String("cache-dir", "", "decoded-source cache directory")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (console, json)")

	bindFlag("input.dir", "input-dir")
	bindFlag("output.path", "output")
	bindFlag("output.driver", "driver")
	bindFlag("output.dsn", "dsn")
	bindFlag("output.table", "table")
	bindFlag("concurrency.workers", "workers")
	bindFlag("cache.dir", "cache-dir")
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, runCmd.Flags().Lookup(flag))
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if verbose && !cmd.Flags().Changed("log-level") && os.Getenv(envPrefix+"_LOG_LEVEL") == "" {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(cfg)
	logger.Debug("effective config",
		zap.String("input", cfg.Input.Dir),
		zap.String("driver", cfg.Output.Driver),
		zap.String("dsn", logging.SanitizeConnectionString(cfg.Output.DSN)),
		zap.Int("workers", cfg.Concurrency.Workers),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	summary, err := pipeline.NewPipeline(cfg, logger).Run(ctx)
	if summary != nil {
		printSkipped(summary)
	}
	if errors.Is(err, pipeline.ErrNoRecords) {
		fmt.Fprintf(os.Stderr, "No records found in %s; nothing written.\n", cfg.Input.Dir)
		return nil
	}
	if err != nil {
		return errors.New("run failed: " + logging.SanitizeError(err))
	}

	printSummary(summary)
	return nil
}

func printBanner(cfg *model.Config) {
	fmt.Fprintf(os.Stderr, "Input:   %s\n", cfg.Input.Dir)
	switch cfg.Output.Driver {
	case "postgres", "postgresql":
		fmt.Fprintf(os.Stderr, "Output:  %s (%s)\n", logging.SanitizeConnectionString(cfg.Output.DSN), cfg.Output.Table)
	case "sqlite":
		fmt.Fprintf(os.Stderr, "Output:  %s (%s)\n", cfg.Output.Path, cfg.Output.Table)
	default:
		fmt.Fprintf(os.Stderr, "Output:  %s\n", cfg.Output.Path)
	}
	fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "Cache:   %v\n", cfg.Cache.Enabled)
	fmt.Fprintln(os.Stderr)
}

func printSkipped(s *pipeline.Summary) {
	for _, f := range s.Skipped {
		fmt.Fprintf(os.Stderr, "⚠ Skipped %s: %v\n", f.File.Path, f.Err)
	}
}

func printSummary(s *pipeline.Summary) {
	fmt.Fprintf(os.Stderr, "✓ Loaded %d sources (%d skipped), %d rows\n", s.Sources, len(s.Skipped), s.RowsRead)
	fmt.Fprintf(os.Stderr, "✓ %d records after fingerprint merge\n", s.BucketMerged)
	fmt.Fprintf(os.Stderr, "✓ %d master records after fuzzy merge\n", s.Final)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", s.Output)
	fmt.Fprintf(os.Stderr, "\nRun %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
}
