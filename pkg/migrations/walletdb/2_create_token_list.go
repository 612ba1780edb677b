package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
	"github.com/chainsafe/wallet-sync/pkg/tokenlist"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating token_list table...")
		if err := mghelper.CreateSchema(ctx, db, &tokenlist.TokenDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &tokenlist.TokenDao{}, "chain_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_list table...")
		return mghelper.DropTables(ctx, db, &tokenlist.TokenDao{})
	})
}
