package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/preferences"
	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating user_preferences table...")
		return mghelper.CreateSchema(ctx, db, &preferences.PreferenceDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping user_preferences table...")
		return mghelper.DropTables(ctx, db, &preferences.PreferenceDao{})
	})
}
