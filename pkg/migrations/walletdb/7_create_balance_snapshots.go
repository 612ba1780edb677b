package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating balance_snapshots table...")
		return mghelper.CreateSchema(ctx, db, &syncstatus.BalanceDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping balance_snapshots table...")
		return mghelper.DropTables(ctx, db, &syncstatus.BalanceDao{})
	})
}
