package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesAndMigrates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invocation_log`).Scan(&n); err != nil {
		t.Fatalf("invocation_log table missing after migrate: %v", err)
	}
	if n != 0 {
		t.Errorf("fresh invocation_log has %d rows", n)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("schema_migrations rows = %d; want 1", n)
	}
}

func TestOpen_OutcomeCheckConstraint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO invocation_log
		(id, mode, endpoint, outcome, duration_ms, created_at)
		VALUES ('x', 'run_once', 'https://api', 'maybe', 1, datetime('now'))`)
	if err == nil {
		t.Error("insert with outcome 'maybe' succeeded; want CHECK violation")
	}
}
