package walletdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/addressbook"
	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating address_book table...")
		return mghelper.CreateSchema(ctx, db, &addressbook.ContactDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping address_book table...")
		return mghelper.DropTables(ctx, db, &addressbook.ContactDao{})
	})
}
