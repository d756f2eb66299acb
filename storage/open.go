package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is BackendFile or BackendSQL.
	Backend string
	// DataDir holds the JSON documents of the file backend.
	DataDir string
	// DatabaseURL is a postgres:// URL or a SQLite path (optionally prefixed
	// with sqlite://).
	DatabaseURL string
	// Debug logs every SQL statement.
	Debug bool
}

// Open constructs the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendFile:
		log.Printf("[storage] Using JSON documents in %s", opts.DataDir)
		return OpenFile(opts.DataDir)
	case BackendSQL:
		return OpenSQL(ctx, opts.DatabaseURL, opts.Debug)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// OpenSQL connects to the database named by dsn and migrates the schema.
func OpenSQL(ctx context.Context, dsn string, debug bool) (*SQLBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database URL is required for the sql backend")
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if isPostgres(dsn) {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to reach postgres: %w", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		backend, err := NewSQLBackend(db)
		if err != nil {
			pool.Close()
			return nil, err
		}
		backend.closers = append(backend.closers, pool.Close)
		log.Printf("[storage] Connected to PostgreSQL")
		return backend, nil
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	backend, err := NewSQLBackend(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Printf("[storage] Connected to SQLite database %s", path)
	return backend, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
