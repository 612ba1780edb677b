// Package walletdb holds all the migrations for the on-device wallet database
package walletdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the wallet database.
// The schema version is the number of applied migrations.
var Migrations = migrate.NewMigrations()
