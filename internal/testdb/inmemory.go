// Package testdb opens throwaway stores for tests.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kuitang/noteful/internal/db"
)

// testKeyHex encrypts in-memory test databases so the SQLCipher path is exercised.
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var seq atomic.Int64

// NewStoreInMemory creates an encrypted in-memory SQLite store with the schema applied.
// Each call gets its own database; name only makes debugging output readable.
func NewStoreInMemory(name string) (*db.Store, error) {
	if name == "" {
		name = "test"
	}
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared&_pragma_key=x'%s'&_pragma_cipher_page_size=4096",
		name, seq.Add(1), testKeyHex)

	sqlDB, err := sql.Open(db.SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	// The shared-cache memory database lives as long as one connection does.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(0)

	var sqliteVersion string
	if err := sqlDB.QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to verify in-memory database: %w", err)
	}

	if err := applyFastSQLitePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply fast SQLite pragmas: %w", err)
	}

	store := db.New(sqlDB, db.SQLite)
	if err := store.ApplySchema(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize in-memory schema: %w", err)
	}
	return store, nil
}

// TB is the part of testing.TB that NewStore needs; *rapid.T satisfies it too.
type TB interface {
	Fatalf(format string, args ...any)
	Cleanup(func())
}

// NewStore is NewStoreInMemory for tests: it fails the test on error and
// closes the store on cleanup.
func NewStore(t TB) *db.Store {
	name := "test"
	if named, ok := t.(interface{ Name() string }); ok {
		name = named.Name()
	}
	store, err := NewStoreInMemory(name)
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func applyFastSQLitePragmas(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA secure_delete=OFF",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
