package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/internal/etl"
	"github.com/BartekS5/salesflow/internal/generator"
	"github.com/BartekS5/salesflow/internal/lineage"
	"github.com/BartekS5/salesflow/internal/scheduler"
	"github.com/BartekS5/salesflow/internal/storage"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.FgYellow)
)

func loadConfig(root *RootOptions) (*config.App, error) {
	var envFiles []string
	if root.EnvFile != "" {
		envFiles = append(envFiles, root.EnvFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	if root.PipelineFile != "" {
		pf, err := config.LoadPipelineFile(root.PipelineFile)
		if err != nil {
			return nil, err
		}
		if err := pf.Apply(cfg); err != nil {
			return nil, err
		}
		logger.Infof("Applied pipeline definition from %s", root.PipelineFile)
	}

	if err := applyLogConfig(root, cfg.Log); err != nil {
		return nil, err
	}
	cfg.LogSummary()
	return cfg, nil
}

// applyLogConfig re-initializes the logger from LOG_LEVEL and LOG_FILE.
// Explicit --log-level and --log-file flags take precedence.
func applyLogConfig(root *RootOptions, cfg config.Log) error {
	level, file := root.LogLevel, root.LogFile
	if !root.logLevelSet && cfg.Level != "" {
		level = cfg.Level
	}
	if file == "" {
		file = cfg.File
	}
	if level == root.LogLevel && file == root.LogFile {
		return nil
	}
	if err := logger.InitLogger(file, level); err != nil {
		return err
	}
	root.LogLevel, root.LogFile = level, file
	return nil
}

// openStore builds the object store for a command. Tests replace it to run
// commands against an in-process store.
var openStore = newStore

// newStore rejects the memory backend: each command runs in its own process,
// so objects written by one command would never be seen by the next.
func newStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Backend {
	case "memory":
		return nil, fmt.Errorf("storage backend %q only works within a single process; use s3 or gcs", cfg.Backend)
	case "gcs":
		return storage.NewGCSStore(ctx, storage.GCSOptions{
			ProjectID:       cfg.ProjectID,
			CredentialsFile: cfg.CredentialsFile,
			Endpoint:        cfg.Endpoint,
		})
	default:
		return storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	}
}

// newEmitter returns nil when lineage is disabled; a nil emitter is a no-op.
func newEmitter(ctx context.Context, cfg config.Lineage) (*lineage.Emitter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	t, err := lineage.NewTransport(ctx, lineage.Options{
		Transport:       cfg.Transport,
		URL:             cfg.URL,
		APIKey:          cfg.APIKey,
		Timeout:         cfg.Timeout,
		KafkaBrokers:    cfg.KafkaBrokers,
		KafkaTopic:      cfg.KafkaTopic,
		MongoURI:        cfg.MongoURI,
		MongoDatabase:   cfg.MongoDatabase,
		MongoCollection: cfg.MongoCollection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up lineage transport: %w", err)
	}
	return lineage.NewEmitter(t, cfg.Namespace), nil
}

func newPipeline(cfg *config.App, store storage.Store, emitter *lineage.Emitter) (*etl.Pipeline, error) {
	init, err := etl.NewSQLSchemaInitializer(cfg.DB, nil)
	if err != nil {
		return nil, err
	}
	loader, err := etl.NewSQLLoader(cfg.DB, nil)
	if err != nil {
		return nil, err
	}
	extractor := etl.NewObjectExtractor(store, cfg.Storage)
	src := extractor.Source()
	loader.Source = &src

	retry := etl.RetryPolicy{Retries: cfg.Schedule.Retries, Delay: cfg.Schedule.RetryDelay}
	return etl.NewPipeline(cfg.PipelineName, init, extractor, loader, retry, emitter), nil
}

func runGenerate(cmd *cobra.Command, root *RootOptions, opts *GenerateOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Generator.Seed = opts.Seed
	}
	if cmd.Flags().Changed("rows") {
		if opts.Rows < 1 {
			return fmt.Errorf("--rows must be at least 1, got %d", opts.Rows)
		}
		cfg.Generator.Rows = opts.Rows
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	emitter, err := newEmitter(ctx, cfg.Lineage)
	if err != nil {
		return err
	}
	defer emitter.Close()

	logger.Info("Generating dummy data...")
	txs := generator.New(cfg.Generator, time.Now()).Generate()

	size, err := generator.NewPublisher(store, cfg.Storage, emitter).Publish(ctx, txs)
	if err != nil {
		failColor.Fprintf(cmd.ErrOrStderr(), "Upload failed: %v\n", err)
		return err
	}
	okColor.Fprintf(cmd.OutOrStdout(), "Uploaded %d records (%d bytes) to %s/%s\n",
		len(txs), size, cfg.Storage.Bucket, cfg.Storage.Object)
	return nil
}

func runInitSchema(cmd *cobra.Command, root *RootOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	init, err := etl.NewSQLSchemaInitializer(cfg.DB, nil)
	if err != nil {
		return err
	}
	if err := init.Init(cmd.Context()); err != nil {
		failColor.Fprintf(cmd.ErrOrStderr(), "Schema initialization failed: %v\n", err)
		return err
	}
	okColor.Fprintf(cmd.OutOrStdout(), "Table %s.%s is ready\n", cfg.DB.Name, cfg.DB.Table)
	return nil
}

func runPipeline(cmd *cobra.Command, root *RootOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	emitter, err := newEmitter(ctx, cfg.Lineage)
	if err != nil {
		return err
	}
	defer emitter.Close()

	p, err := newPipeline(cfg, store, emitter)
	if err != nil {
		return err
	}
	report, err := p.Run(ctx)
	printReport(cmd.OutOrStdout(), report)
	return err
}

func runSchedule(cmd *cobra.Command, root *RootOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	emitter, err := newEmitter(ctx, cfg.Lineage)
	if err != nil {
		return err
	}
	defer emitter.Close()

	p, err := newPipeline(cfg, store, emitter)
	if err != nil {
		return err
	}

	s := scheduler.New(cfg.Schedule.Interval, func(ctx context.Context) error {
		report, err := p.Run(ctx)
		printReport(cmd.OutOrStdout(), report)
		return err
	})
	return s.Run(ctx)
}

func printReport(w io.Writer, report *etl.RunReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(w, "Pipeline %s (started %s)\n", report.Pipeline, report.Started.Format(time.RFC3339))
	for _, st := range report.Stages {
		switch st.State {
		case etl.StateSucceeded:
			okColor.Fprintf(w, "  %-20s %-9s", st.Name, st.State)
		case etl.StateFailed:
			failColor.Fprintf(w, "  %-20s %-9s", st.Name, st.State)
		default:
			dimColor.Fprintf(w, "  %-20s %-9s", st.Name, st.State)
		}
		fmt.Fprintf(w, " attempts=%d took=%s\n", st.Attempts, st.Duration.Round(time.Millisecond))
	}
	if report.Succeeded() {
		okColor.Fprintf(w, "Loaded %d rows\n", report.Rows)
	}
}
