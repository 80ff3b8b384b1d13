package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	d := NewSQLiteDialect()

	if d.DriverName() != "sqlite3" {
		t.Errorf("DriverName() = %v, want sqlite3", d.DriverName())
	}
	if !d.SupportsLastInsertId() {
		t.Error("SQLite should support LastInsertId")
	}
	if d.MigrationsSubdir() != "sqlite" {
		t.Errorf("MigrationsSubdir() = %v, want sqlite", d.MigrationsSubdir())
	}
	if got := d.DSN(DialectConfig{Path: "./hub.db"}); got != "./hub.db" {
		t.Errorf("DSN() = %v, want ./hub.db", got)
	}
	query := "SELECT * FROM profiles WHERE id = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("SQLite should not rewrite placeholders: %v", got)
	}
}

func TestDialectPostgreSQL(t *testing.T) {
	d := NewPostgresDialect()

	if d.DriverName() != "postgres" {
		t.Errorf("DriverName() = %v, want postgres", d.DriverName())
	}
	if d.SupportsLastInsertId() {
		t.Error("PostgreSQL should not support LastInsertId")
	}
	if d.MigrationsSubdir() != "postgres" {
		t.Errorf("MigrationsSubdir() = %v, want postgres", d.MigrationsSubdir())
	}
	if d.BoolValue(true) != "TRUE" || d.BoolValue(false) != "FALSE" {
		t.Error("unexpected BoolValue output")
	}
}

func TestDialectMySQL(t *testing.T) {
	d := NewMySQLDialect()

	if d.DriverName() != "mysql" {
		t.Errorf("DriverName() = %v, want mysql", d.DriverName())
	}
	if !d.SupportsLastInsertId() {
		t.Error("MySQL should support LastInsertId")
	}
	query := "SELECT * FROM profiles WHERE id = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("MySQL should not rewrite placeholders: %v", got)
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT COUNT(*) FROM verification_cards",
			expected: "SELECT COUNT(*) FROM verification_cards",
		},
		{
			name:     "single placeholder",
			query:    "SELECT * FROM profiles WHERE id = ?",
			expected: "SELECT * FROM profiles WHERE id = $1",
		},
		{
			name:     "multiple placeholders",
			query:    "INSERT INTO verification_cards (user_id, card_level) VALUES (?, ?)",
			expected: "INSERT INTO verification_cards (user_id, card_level) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.expected {
				t.Errorf("rewritePlaceholdersToNumbered() = %v, want %v", got, tt.expected)
			}
		})
	}
}
