package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// SQLiteDriverName is the project-specific SQLCipher driver.
	SQLiteDriverName = "sqlite3_noteful"

	sqliteBusyTimeoutMS = 5000
)

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", sqliteBusyTimeoutMS), nil); err != nil {
				return fmt.Errorf("set busy_timeout: %w", err)
			}
			return nil
		},
	})
}

// SQLiteDSN builds a go-sqlcipher DSN. An empty keyHex opens a plain SQLite
// file; otherwise the database is encrypted with the raw 32-byte key.
func SQLiteDSN(path, keyHex string) string {
	if keyHex == "" {
		return fmt.Sprintf("file:%s", path)
	}
	return fmt.Sprintf("file:%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", path, keyHex)
}

// OpenSQLite opens (creating if needed) the SQLite store at path.
func OpenSQLite(path, keyHex string, maxConns int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(SQLiteDriverName, SQLiteDSN(path, keyHex))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)

	// A wrong key only surfaces on the first read.
	var n int
	if err := sqlDB.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verify sqlite database (wrong DATABASE_KEY?): %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	return New(sqlDB, SQLite), nil
}
