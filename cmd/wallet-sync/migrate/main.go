package main

import (
	"context"
	"flag"
	"log"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/wallet-sync/pkg/config"
	"github.com/chainsafe/wallet-sync/pkg/migrations/walletdb"
	"github.com/chainsafe/wallet-sync/pkg/sqliteutil"
	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if cfg.Store.InMemory {
		log.Fatalf("in-memory stores are migrated on open; nothing to do")
	}

	ctx := context.Background()
	db, err := sqliteutil.ConnectDB(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("error opening store: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for wallet store (%s)...\n", cfg.Store.Path)

	migrator := migrate.NewMigrator(db, walletdb.Migrations)
	if err := mghelper.RunMigrations(ctx, migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
