package db_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/db/testutil"
	"github.com/kuitang/noteful/internal/testdb"
	"pgregory.net/rapid"
)

var foldersTable = db.Table{Name: "folders", Columns: []string{"name"}}

var notesTable = db.Table{Name: "notes", Columns: []string{"name", "modified", "folderid", "content"}}

type folderRow struct {
	ID   int64
	Name string
}

func scanFolderRow(s db.Scanner) (folderRow, error) {
	var f folderRow
	err := s.Scan(&f.ID, &f.Name)
	return f, err
}

type noteRow struct {
	ID       int64
	Name     string
	Modified time.Time
	FolderID int64
	Content  string
}

func scanNoteRow(s db.Scanner) (noteRow, error) {
	var n noteRow
	err := s.Scan(&n.ID, &n.Name, &n.Modified, &n.FolderID, &n.Content)
	return n, err
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()
	if got := db.SQLite.Placeholder(3); got != "?" {
		t.Fatalf("sqlite placeholder = %q", got)
	}
	if got := db.Postgres.Placeholder(3); got != "$3" {
		t.Fatalf("postgres placeholder = %q", got)
	}
	if db.Postgres.String() != "postgres" || db.SQLite.String() != "sqlite" {
		t.Fatal("unexpected dialect names")
	}
}

func testInsertGetRoundtrip(t *rapid.T) {
	store, err := testdb.NewStoreInMemory("roundtrip")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	names := rapid.SliceOfN(testutil.ArbitraryNonEmptyString(), 1, 5).Draw(t, "names")
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := db.Insert(ctx, store, foldersTable, []db.Value{{Column: "name", Arg: name}})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if i > 0 && id <= ids[i-1] {
			t.Fatalf("ids not increasing: %d after %d", id, ids[i-1])
		}
		ids[i] = id
	}

	for i, id := range ids {
		got, err := db.GetByID(ctx, store, foldersTable, id, scanFolderRow)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if got.Name != names[i] {
			t.Fatalf("name changed in store: got %q want %q", got.Name, names[i])
		}
	}

	all, err := db.List(ctx, store, foldersTable, scanFolderRow)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != len(names) {
		t.Fatalf("list returned %d rows, want %d", len(all), len(names))
	}
	for i := range all {
		if all[i].ID != ids[i] {
			t.Fatalf("list not ordered by id: %v", all)
		}
	}
}

func TestInsertGetRoundtrip(t *testing.T) {
	rapid.Check(t, testInsertGetRoundtrip)
}

func TestGetByID_Missing(t *testing.T) {
	store := testdb.NewStore(t)
	_, err := db.GetByID(context.Background(), store, foldersTable, 999, scanFolderRow)
	if !db.IsNoRows(err) {
		t.Fatalf("expected no rows, got %v", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	store := testdb.NewStore(t)
	rows, err := db.List(context.Background(), store, foldersTable, scanFolderRow)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestUpdateAndDelete_AffectedRows(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()

	id, err := db.Insert(ctx, store, foldersTable, []db.Value{{Column: "name", Arg: "Important"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := db.Update(ctx, store, foldersTable, id, []db.Value{{Column: "name", Arg: "Super"}})
	if err != nil || n != 1 {
		t.Fatalf("update existing: n=%d err=%v", n, err)
	}
	n, err = db.Update(ctx, store, foldersTable, id+100, []db.Value{{Column: "name", Arg: "Nope"}})
	if err != nil || n != 0 {
		t.Fatalf("update missing: n=%d err=%v", n, err)
	}

	got, err := db.GetByID(ctx, store, foldersTable, id, scanFolderRow)
	if err != nil || got.Name != "Super" {
		t.Fatalf("after update: %+v err=%v", got, err)
	}

	n, err = db.Delete(ctx, store, foldersTable, id)
	if err != nil || n != 1 {
		t.Fatalf("delete existing: n=%d err=%v", n, err)
	}
	n, err = db.Delete(ctx, store, foldersTable, id)
	if err != nil || n != 0 {
		t.Fatalf("delete again: n=%d err=%v", n, err)
	}
}

func TestInsertAndUpdate_RejectUnknownOrMissingColumns(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()

	if _, err := db.Insert(ctx, store, foldersTable, nil); err == nil {
		t.Fatal("insert without values should fail")
	}
	if _, err := db.Insert(ctx, store, foldersTable, []db.Value{{Column: "name; DROP TABLE folders", Arg: "x"}}); err == nil {
		t.Fatal("insert with unknown column should fail")
	}
	if _, err := db.Update(ctx, store, foldersTable, 1, []db.Value{{Column: "id", Arg: 7}}); err == nil {
		t.Fatal("update of id should fail")
	}
}

func TestNotes_ModifiedTimestampRoundtrip(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()

	folderID, err := db.Insert(ctx, store, foldersTable, []db.Value{{Column: "name", Arg: "Important"}})
	if err != nil {
		t.Fatalf("insert folder: %v", err)
	}
	modified := time.Date(2019, 1, 3, 0, 0, 0, 0, time.UTC)
	id, err := db.Insert(ctx, store, notesTable, []db.Value{
		{Column: "name", Arg: "Dogs"},
		{Column: "modified", Arg: modified},
		{Column: "folderid", Arg: folderID},
		{Column: "content", Arg: "Woof"},
	})
	if err != nil {
		t.Fatalf("insert note: %v", err)
	}

	got, err := db.GetByID(ctx, store, notesTable, id, scanNoteRow)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if !got.Modified.Equal(modified) {
		t.Fatalf("modified changed: got %v want %v", got.Modified, modified)
	}
	if got.FolderID != folderID || got.Content != "Woof" {
		t.Fatalf("unexpected note: %+v", got)
	}
}

func TestOpenSQLite_FileWithKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "noteful.db")
	key := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	store, err := db.OpenSQLite(path, key, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.ApplySchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	// Applying twice is a no-op.
	if err := store.ApplySchema(context.Background()); err != nil {
		t.Fatalf("schema again: %v", err)
	}
	if _, err := db.Insert(context.Background(), store, foldersTable, []db.Value{{Column: "name", Arg: "Spiders"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	wrong := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	if s, err := db.OpenSQLite(path, wrong, 1); err == nil {
		s.Close()
		t.Fatal("opening with the wrong key should fail")
	}

	store, err = db.OpenSQLite(path, key, 1)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	rows, err := db.List(context.Background(), store, foldersTable, scanFolderRow)
	if err != nil || len(rows) != 1 || rows[0].Name != "Spiders" {
		t.Fatalf("reopened rows = %+v err=%v", rows, err)
	}
}

func TestErrorAttrs_NonDriverError(t *testing.T) {
	t.Parallel()
	if attrs := db.ErrorAttrs(errors.New("boom")); attrs != nil {
		t.Fatalf("expected no attrs, got %v", attrs)
	}
	if db.IsConnectionError(errors.New("boom")) {
		t.Fatal("plain error is not a connection error")
	}
}

func TestOpenPostgres_RejectsPoolSizeOverflow(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("int cannot exceed MaxInt32")
	}
	limit := int64(math.MaxInt32)
	_, err := db.OpenPostgres(context.Background(), "postgres://noteful@127.0.0.1:1/noteful", int(limit+1), nil)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
}
