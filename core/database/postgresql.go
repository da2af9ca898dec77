package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-coordinator/core/config"
	"go-coordinator/core/constants"
	"go-coordinator/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PingContext(ctx context.Context) error
	SQLx() *sqlx.DB
	Close() error
}

type Database struct {
	sqlx *sqlx.DB
}

// InitDB connects, tunes the pool and pings. The caller owns Close.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	logger.Info("Database:Init:Start", "host", cfg.Host, "port", cfg.Port, "database", cfg.DBName)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = constants.DatabaseSSLMode
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	connectCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	sqlxDB, err := sqlx.ConnectContext(connectCtx, "postgres", dsn)
	if err != nil {
		logger.Error("Database:Init:Error", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlxDB.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	logger.Info("Database:Init:Success",
		"maxOpenConns", constants.DatabaseMaxOpenConns,
		"maxIdleConns", constants.DatabaseMaxIdleConns,
		"connMaxLifetime", constants.DatabaseConnMaxLifetime,
	)
	return &Database{sqlx: sqlxDB}, nil
}

// New wraps an existing handle, e.g. one opened by a test harness.
func New(db *sqlx.DB) *Database {
	return &Database{sqlx: db}
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sqlx.ExecContext(ctx, query, args...)
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlx.PingContext(ctx)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}
