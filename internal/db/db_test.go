package db

import (
	"strings"
	"testing"
)

func TestSchemaEmailUniqueIgnoresCase(t *testing.T) {
	if !strings.Contains(Schema, "CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))") {
		t.Fatalf("expected case-insensitive unique index on users.email")
	}
}
