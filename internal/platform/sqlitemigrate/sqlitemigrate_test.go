package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsOnce(t *testing.T) {
	db := openTempDB(t)
	migrations := fstest.MapFS{
		"0001_create.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
		"README.md":       &fstest.MapFile{Data: []byte("not a migration")},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
			t.Fatalf("apply migrations (run %d): %v", i, err)
		}
	}
	if rows := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected 1 migration row, got %d", rows)
	}
	if rows := count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='items'"); rows != 1 {
		t.Fatalf("expected items table to exist")
	}
}

func TestApplyMigrationsLeavesFailedUnrecorded(t *testing.T) {
	db := openTempDB(t)
	bad := fstest.MapFS{"0001_bad.sql": &fstest.MapFile{Data: []byte("CREAT TABLE things(id INT);")}}
	if err := ApplyMigrations(context.Background(), db, bad, ""); err == nil {
		t.Fatalf("expected bad migration to fail")
	}
	if rows := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected failed migration unrecorded, got %d rows", rows)
	}
}

func TestApplyMigrationsUsesRootInKey(t *testing.T) {
	db := openTempDB(t)
	migrations := fstest.MapFS{"results/0001.sql": &fstest.MapFile{Data: []byte("CREATE TABLE r(id TEXT);")}}
	if err := ApplyMigrations(context.Background(), db, migrations, "results"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&key); err != nil {
		t.Fatalf("query key: %v", err)
	}
	if key != "results/0001.sql" {
		t.Fatalf("expected rooted key, got %q", key)
	}
}

func TestExtractUpMigration(t *testing.T) {
	got := ExtractUpMigration("-- +migrate Up\nA;\n-- +migrate Down\nB;")
	if got != "\nA;\n" {
		t.Fatalf("expected up section only, got %q", got)
	}
	if got := ExtractUpMigration("C;"); got != "C;" {
		t.Fatalf("expected whole file without markers, got %q", got)
	}
}

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}
