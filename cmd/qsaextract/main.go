// Command qsaextract converts the Receita Federal QSA fixed-width dump into
// per-record-type outputs.
//
// Usage:
//
//	qsaextract [flags] INPUT OUTPUT_DIR
//
// INPUT is the dump, either the published zip archive or an uncompressed
// fixed-width file. OUTPUT_DIR receives one CSV per record type plus an
// error file; when DATABASE_URL is set the records go to PostgreSQL instead
// and only the error file is written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/brdata/qsaextract/internal/config"
	"github.com/brdata/qsaextract/internal/container"
	"github.com/brdata/qsaextract/internal/database"
	"github.com/brdata/qsaextract/internal/extract"
	"github.com/brdata/qsaextract/internal/logging"
	"github.com/brdata/qsaextract/internal/sink"
)

func main() {
	if err := run(); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] INPUT OUTPUT_DIR\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected INPUT and OUTPUT_DIR arguments, got %d", flag.NArg())
	}
	inputPath, outputDir := flag.Arg(0), flag.Arg(1)

	// A .env file is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New()
	ctx = logging.WithRunID(ctx, runID.String())
	log := logging.FromContext(ctx)
	log.Debug("configuration loaded", "config", cfg.String())

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	entries := extract.Defaults()
	if err := extract.LoadLayouts(cfg.Layouts.Dir, entries); err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureRunsTable(ctx, pool); err != nil {
			return err
		}
		if err := database.InsertRun(ctx, pool, runID, filepath.Base(inputPath)); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if pool != nil {
			e.Sink = sink.NewPostgresSink(ctx, pool, tableName(e.OutputName), cfg.Database.BatchSize)
			continue
		}
		s, err := sink.NewCSVSink(filepath.Join(outputDir, outputFileName(e.OutputName, cfg.Output.Compress)), cfg.Output.Compress)
		if err != nil {
			return err
		}
		e.Sink = s
	}

	failures, err := sink.NewErrorSink(filepath.Join(outputDir, outputFileName("error", cfg.Output.Compress)), cfg.Output.Compress)
	if err != nil {
		return err
	}

	registry, err := extract.NewRegistry(entries...)
	if err != nil {
		return err
	}
	extractor := extract.New(registry, failures, int64(cfg.Output.ProgressInterval))

	stream, err := container.Open(inputPath)
	if err != nil {
		return err
	}
	defer stream.Close()

	log.Info("starting extraction",
		"input", inputPath,
		"output", outputDir,
		"database", cfg.Database.Enabled(),
		"compress", cfg.Output.Compress,
	)

	res, runErr := extractor.Run(ctx, stream)
	closeErr := extractor.Close()

	if pool != nil && res != nil {
		// Stamp the bookkeeping row even when the run was interrupted.
		finishCtx := context.WithoutCancel(ctx)
		if err := database.FinishRun(finishCtx, pool, runID, res.Lines, res.Failures); err != nil {
			log.Warn("could not finish bookkeeping row", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("close outputs: %w", closeErr)
	}

	log.Info("extraction complete",
		"lines", res.Lines,
		"written", res.TotalWritten(),
		"failures", res.Failures,
		"duration", res.Duration,
	)
	for _, e := range registry.Entries() {
		log.Info("record type done", "type", e.Type.String(), "written", res.Written[e.Type])
	}
	return nil
}

// outputFileName builds the destination file name for one record type.
func outputFileName(name string, compress bool) string {
	if compress {
		return name + ".csv.gz"
	}
	return name + ".csv"
}

// tableName maps an output name to a PostgreSQL table name.
func tableName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
