package shared

import "testing"

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='tracks'").Scan(&name); err != nil {
		t.Fatalf("tracks table not created: %v", err)
	}

	var value int
	if err := db.QueryRow("SELECT value FROM tracks_sequence WHERE id = 1").Scan(&value); err != nil {
		t.Fatalf("tracks_sequence not seeded: %v", err)
	}
	if value != 0 {
		t.Errorf("initial sequence = %d, want 0", value)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second run error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("applied migration count = %d, want 1", count)
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='tracks'").Scan(&name)
	if err == nil {
		t.Fatal("tracks table still exists after rollback")
	}
}

func TestRollbackMigrationEmpty(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := createMigrationsTable(db); err != nil {
		t.Fatalf("failed to create migrations table: %v", err)
	}

	if err := RollbackMigration(db); err == nil {
		t.Fatal("expected error when no migrations applied")
	}
}
