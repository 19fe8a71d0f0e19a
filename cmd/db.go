// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pterm/pterm"

	"dbgate/cli/internal/config"
	"dbgate/cli/internal/dsn"
	dberrors "dbgate/cli/internal/errors"
	"dbgate/cli/internal/keychain"
	"dbgate/cli/internal/logging"
	"dbgate/cli/internal/sqlexec"
	"dbgate/cli/internal/stmt"
)

// session bundles what every database-backed command needs.
type session struct {
	cfg     config.Config
	logger  *pterm.Logger
	db      *sql.DB
	target  *dsn.Target
	source  config.Source
	exec    *sqlexec.Executor
	builder *stmt.Builder
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func keychainDSN() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return km.LoadDBDSN()
}

func keychainS3Secret() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return km.LoadS3SecretKey()
}

func loadConfig() (config.Config, *pterm.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logging.New(cfg.LogLevel, os.Stderr), nil
}

// openPool opens and pings the pool for target using the configured limits.
func openPool(ctx context.Context, target *dsn.Target, cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, dberrors.Wrap(dberrors.ConnectFailed, err.Error(), err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, dberrors.Wrap(dberrors.ConnectFailed, err.Error(), err)
	}
	return db, nil
}

// openSession loads config, resolves the DSN and connects.
func openSession(ctx context.Context) (*session, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	raw, source, err := cfg.ResolveDSN(keychainDSN)
	if err != nil {
		return nil, err
	}
	target, err := dsn.Resolve(raw)
	if err != nil {
		return nil, dberrors.Wrap(dberrors.ConfigInvalid, err.Error(), err)
	}
	dialect, err := stmt.DialectFor(string(target.Type))
	if err != nil {
		return nil, err
	}

	logger.Debug("connecting", logger.Args("source", string(source), "driver", target.Driver, "dsn", logging.Mask(raw)))
	db, err := openPool(ctx, target, cfg)
	if err != nil {
		return nil, err
	}

	builder := stmt.NewBuilder(dialect)
	builder.StrictTypes = cfg.StrictColumnTypes

	return &session{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		target:  target,
		source:  source,
		exec:    sqlexec.New(db, logger),
		builder: builder,
	}, nil
}
