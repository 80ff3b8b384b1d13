package database

import (
	"os"
	"testing"
)

// TestDatabaseLifecycle exercises initialization, migrations, and
// transactions against a throwaway SQLite database.
func TestDatabaseLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_lifecycle.db"
	defer os.Remove(dbPath)

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tables := []string{
		"profiles", "sessions", "verification_sessions", "verification_cards",
		"card_difficulty_settings", "quiz_bank", "quiz_results",
		"chat_messages", "chat_bans", "notifications", "bad_words",
	}
	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Transactions commit and roll back cleanly.
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	_, err = tx.Exec(
		"INSERT INTO profiles (email, password_hash, username, referral_code) VALUES (?, ?, ?, ?)",
		"test@example.com", "hashedpass", "tester", "REF12345")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM profiles WHERE email = ?", "test@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to count profiles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 profile, got %d", count)
	}
}

// TestCardUniqueness verifies the uniqueness constraint on
// (user_id, card_level).
func TestCardUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_card_unique.db"
	defer os.Remove(dbPath)

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userID, err := db.ExecReturningID(
		"INSERT INTO profiles (email, password_hash, username, referral_code) VALUES (?, ?, ?, ?)",
		"dup@example.com", "hash", "dup", "REF00001")
	if err != nil {
		t.Fatalf("Failed to insert profile: %v", err)
	}

	insert := "INSERT INTO verification_cards (user_id, card_level, card_type, card_name) VALUES (?, ?, ?, ?)"
	if _, err := db.Exec(insert, userID, 1, "blue", "Common Card"); err != nil {
		t.Fatalf("First card insert failed: %v", err)
	}
	if _, err := db.Exec(insert, userID, 1, "blue", "Common Card"); err == nil {
		t.Error("Duplicate card insert should violate the uniqueness constraint")
	}
}
