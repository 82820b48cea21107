package etl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BartekS5/salesflow/internal/config"
	"github.com/BartekS5/salesflow/pkg/database"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/BartekS5/salesflow/pkg/models"
)

// Opener returns a fresh database handle. Every stage opens its own and
// closes it before returning.
type Opener func(ctx context.Context) (*sql.DB, error)

// SQLOpener connects with the driver and credentials from cfg.
func SQLOpener(cfg config.Database) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		connString, err := cfg.ConnString()
		if err != nil {
			return nil, err
		}
		return database.ConnectSQL(ctx, cfg.Driver, connString)
	}
}

// TableDataset describes the destination table for lineage.
func TableDataset(cfg config.Database) models.Dataset {
	return models.Dataset{
		Namespace: cfg.Namespace(),
		Name:      cfg.Name + "." + cfg.Table,
		Fields:    models.SalesSchemaFields(),
	}
}

// SQLSchemaInitializer creates the sales table when it does not exist yet.
type SQLSchemaInitializer struct {
	open    Opener
	dialect Dialect
	table   string
	target  models.Dataset
}

func NewSQLSchemaInitializer(cfg config.Database, open Opener) (*SQLSchemaInitializer, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := checkIdentifier(cfg.Table); err != nil {
		return nil, err
	}
	if open == nil {
		open = SQLOpener(cfg)
	}
	return &SQLSchemaInitializer{open: open, dialect: dialect, table: cfg.Table, target: TableDataset(cfg)}, nil
}

func (s *SQLSchemaInitializer) Init(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, s.dialect.CreateTableSQL(s.table)); err != nil {
		return fmt.Errorf("%w: failed to create table %s: %w", ErrDatabase, s.table, err)
	}
	logger.Infof("Table %s is ready", s.table)
	return nil
}

func (s *SQLSchemaInitializer) Datasets() (inputs, outputs []models.Dataset) {
	return nil, []models.Dataset{s.target}
}

// SQLLoader replaces the contents of the sales table with a batch of rows in
// a single transaction.
type SQLLoader struct {
	open        Opener
	dialect     Dialect
	table       string
	validator   *Validator
	transformer *Transformer

	// Source is reported as the lineage input of the load.
	Source *models.Dataset
	target models.Dataset
}

func NewSQLLoader(cfg config.Database, open Opener) (*SQLLoader, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := checkIdentifier(cfg.Table); err != nil {
		return nil, err
	}
	if open == nil {
		open = SQLOpener(cfg)
	}
	return &SQLLoader{
		open:        open,
		dialect:     dialect,
		table:       cfg.Table,
		validator:   NewValidator(),
		transformer: NewTransformer(),
		target:      TableDataset(cfg),
	}, nil
}

func (l *SQLLoader) Load(ctx context.Context, rows []models.Row) (err error) {
	if err := l.validator.ValidateRows(rows); err != nil {
		return err
	}
	batch, err := l.transformer.RowsToArgs(rows)
	if err != nil {
		return err
	}

	logger.Infof("SQL Loader: Processing %d records...", len(batch))
	start := time.Now()

	db, err := l.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrDatabase, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			// A failed Commit has already ended the transaction.
			if errors.Is(rbErr, sql.ErrTxDone) {
				return
			}
			logger.Errorf("Rollback of %s failed: %v", l.table, rbErr)
			return
		}
		logger.Warnf("Load into %s rolled back", l.table)
	}()

	if _, err = tx.ExecContext(ctx, l.dialect.ClearSQL(l.table)); err != nil {
		return fmt.Errorf("%w: failed to clear %s: %w", ErrDatabase, l.table, err)
	}

	insert := l.dialect.InsertSQL(l.table)
	for i, args := range batch {
		if _, err = tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("%w: failed to insert row %d (%v): %w", ErrDatabase, i, args[0], err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit load: %w", ErrDatabase, err)
	}

	logger.L().Info().
		Str("table", l.table).
		Int("rows", len(batch)).
		Dur("took", time.Since(start)).
		Msg("Table reloaded")
	return nil
}

func (l *SQLLoader) Datasets() (inputs, outputs []models.Dataset) {
	if l.Source != nil {
		inputs = []models.Dataset{*l.Source}
	}
	return inputs, []models.Dataset{l.target}
}
