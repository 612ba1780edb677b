package sqliteutil

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/config"
)

// SetupTestDB opens a private in-memory database and closes it when the test ends.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := ConnectDB(context.Background(), &config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// AssertTableExists checks if a table exists in the database
func AssertTableExists(t *testing.T, db bun.IDB, tableName string) {
	t.Helper()

	if !objectExists(t, db, "table", tableName) {
		t.Errorf("table %s does not exist", tableName)
	}
}

// AssertTableNotExists checks if a table does not exist in the database
func AssertTableNotExists(t *testing.T, db bun.IDB, tableName string) {
	t.Helper()

	if objectExists(t, db, "table", tableName) {
		t.Errorf("table %s should not exist but it does", tableName)
	}
}

// AssertIndexExists checks if an index exists in the database
func AssertIndexExists(t *testing.T, db bun.IDB, indexName string) {
	t.Helper()

	if !objectExists(t, db, "index", indexName) {
		t.Errorf("index %s does not exist", indexName)
	}
}

// AssertRowCount checks if a table has the expected number of rows
func AssertRowCount(t *testing.T, db bun.IDB, tableName string, expected int) {
	t.Helper()

	var count int
	err := db.NewSelect().
		TableExpr("?", bun.Ident(tableName)).
		ColumnExpr("COUNT(*)").
		Scan(context.Background(), &count)
	if err != nil {
		t.Fatalf("failed to count rows in table %s: %v", tableName, err)
	}

	if count != expected {
		t.Errorf("table %s: expected %d rows, got %d", tableName, expected, count)
	}
}

func objectExists(t *testing.T, db bun.IDB, kind, name string) bool {
	t.Helper()

	var count int
	err := db.NewSelect().
		TableExpr("sqlite_master").
		ColumnExpr("COUNT(*)").
		Where("type = ?", kind).
		Where("name = ?", name).
		Scan(context.Background(), &count)
	if err != nil {
		t.Fatalf("failed to check if %s %s exists: %v", kind, name, err)
	}
	return count > 0
}
