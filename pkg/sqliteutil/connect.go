// Package sqliteutil opens the embedded SQLite database through bun.
package sqliteutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/chainsafe/wallet-sync/pkg/config"
)

const driverName = "sqlite"

// ConnectDB opens the SQLite database described by cfg.
//
// The pool holds a single connection: SQLite serialises writers anyway, and an
// in-memory database only exists for the connection that created it.
func ConnectDB(ctx context.Context, cfg *config.StoreConfig) (*bun.DB, error) {
	sqldb, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", describe(cfg), err)
	}

	return db, nil
}

func describe(cfg *config.StoreConfig) string {
	if cfg.InMemory {
		return ":memory:"
	}
	return cfg.Path
}
