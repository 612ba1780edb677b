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
		log.Println("creating wc_requests table...")
		if err := mghelper.CreateSchema(ctx, db, &wclog.RequestDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &wclog.RequestDao{}, "session_topic")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wc_requests table...")
		return mghelper.DropTables(ctx, db, &wclog.RequestDao{})
	})
}
