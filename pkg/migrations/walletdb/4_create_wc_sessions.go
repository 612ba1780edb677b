package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
	"github.com/chainsafe/wallet-sync/pkg/wclog"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating wc_sessions table...")
		if err := mghelper.CreateSchema(ctx, db, &wclog.SessionDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &wclog.SessionDao{}, "topic"); err != nil {
			return err
		}
		// At most one active row per topic.
		return mghelper.CreatePartialUniqueIndex(ctx, db, &wclog.SessionDao{}, "topic", "active", "status = 'active'")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wc_sessions table...")
		return mghelper.DropTables(ctx, db, &wclog.SessionDao{})
	})
}
