package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
	"github.com/chainsafe/wallet-sync/pkg/txcache"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating transaction_cache table...")
		if err := mghelper.CreateSchema(ctx, db, &txcache.TransactionDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &txcache.TransactionDao{}, "from_address", "to_address", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping transaction_cache table...")
		return mghelper.DropTables(ctx, db, &txcache.TransactionDao{})
	})
}
