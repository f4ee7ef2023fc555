package db

// SQLiteSchema creates the folders and notes tables on SQLite/SQLCipher.
// Foreign keys are declared but only enforced when PRAGMA foreign_keys is on,
// so a note may outlive its folder on this backend.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS folders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    modified TIMESTAMP NOT NULL,
    folderid INTEGER NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    content TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_folderid ON notes(folderid)`,
}

// PostgresSchema creates the folders and notes tables on Postgres.
// Deleting a folder cascades to its notes.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS folders (
    id BIGINT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY,
    name TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS notes (
    id BIGINT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY,
    name TEXT NOT NULL,
    modified TIMESTAMPTZ NOT NULL DEFAULT now(),
    folderid BIGINT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    content TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_folderid ON notes(folderid)`,
}
