package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestRunSQLiteMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := RunSQLiteMigrations(ctx, db, SQLiteMigrations()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if n != 2 {
		t.Errorf("applied migrations = %d, want 2", n)
	}

	for _, table := range []string{"rates", "instruments", "market_prices", "report_snapshots"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestRunSQLiteMigrationsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"002_add.up.sql":      {Data: []byte(`INSERT INTO t (v) VALUES (2);`)},
		"001_create.up.sql":   {Data: []byte(`CREATE TABLE t (v INTEGER);`)},
		"001_create.down.sql": {Data: []byte(`DROP TABLE t;`)},
	}

	if err := RunSQLiteMigrations(ctx, db, fsys); err != nil {
		t.Fatalf("RunSQLiteMigrations: %v", err)
	}

	var v int
	if err := db.QueryRowContext(ctx, `SELECT v FROM t`).Scan(&v); err != nil {
		t.Fatalf("reading t: %v", err)
	}
	if v != 2 {
		t.Errorf("v = %d, want 2", v)
	}
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	db.Close()
}
