package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"partpal/internal/config"
	"partpal/internal/migrate"
)

type options struct {
	source      string
	target      string
	migrations  string
	batchSize   int
	concurrency int
	yes         bool
	verify      bool
	strict      bool
	rowTimeout  time.Duration
}

var errCountMismatch = errors.New("row counts differ between source and target")

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "partpal-migrate",
		Short:         "Copy PartPal data from SQLite into PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd.Context(), cmd, opts)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&opts.source, "source", cfg.SourceDSN, "SQLite DSN to read from")
	f.StringVar(&opts.target, "target", cfg.TargetURL, "PostgreSQL URL to write to")
	f.StringVar(&opts.migrations, "migrations", cfg.TargetMigrations, "directory of target schema migrations (empty to skip)")

	rf := root.Flags()
	rf.IntVar(&opts.batchSize, "batch-size", cfg.MigrateBatchSize, "rows per batch")
	rf.IntVar(&opts.concurrency, "concurrency", cfg.MigrateConcurrency, "concurrent row writes inside a batch")
	rf.BoolVar(&opts.yes, "yes", false, "upsert into a target that already holds data")
	rf.BoolVar(&opts.verify, "verify", true, "compare source and target row counts after the run")
	rf.BoolVar(&opts.strict, "strict", false, "exit non-zero when verification finds a count mismatch")
	rf.DurationVar(&opts.rowTimeout, "row-timeout", 0, "timeout for each row write (0 disables)")

	root.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Apply the target schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.target == "" {
				return errors.New("--target is required")
			}
			if err := migrate.ApplySchema(opts.migrations, opts.target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	})
	return root
}

func runMigration(ctx context.Context, cmd *cobra.Command, opts *options) error {
	if opts.target == "" {
		return errors.New("--target is required")
	}
	src, err := migrate.OpenSQLite(opts.source, migrate.DefaultTables)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	if opts.migrations != "" {
		if err := migrate.ApplySchema(opts.migrations, opts.target); err != nil {
			return err
		}
	}
	dst, err := migrate.OpenPostgres(ctx, opts.target, migrate.DefaultTables)
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}
	defer dst.Close()

	r := migrate.NewRunner(src, dst)
	r.BatchSize = opts.batchSize
	r.Concurrency = opts.concurrency
	r.AllowNonEmptyTarget = opts.yes
	r.Verify = opts.verify
	r.RowTimeout = opts.rowTimeout

	rep, err := r.Run(ctx)
	if rep != nil {
		printReport(cmd.OutOrStdout(), rep)
	}
	if errors.Is(err, migrate.ErrTargetNotEmpty) {
		return fmt.Errorf("%w (rerun with --yes to upsert)", err)
	}
	if err != nil {
		return err
	}
	if opts.strict && len(rep.Mismatches) > 0 {
		return errCountMismatch
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
