package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/flexfolio/internal/model"
)

// newTestDB opens a fresh in-memory database with all migrations applied.
// t.Cleanup closes it when the test (and its subtests) finish.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser registers a user with default content.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         "User " + username,
		PasswordHash: "$2a$04$hash",
		IsActive:     true,
	}
	if err := db.Users().Create(context.Background(), user, model.DefaultContent(user.Name, user.Email)); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := migrate(context.Background(), db.conn); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	err := db.Projects().Create(context.Background(), &model.Project{
		OwnerID: "no-such-user",
		Title:   "Orphan",
		Status:  model.StatusDraft,
	})
	if err == nil {
		t.Fatal("Create() should fail for an owner that does not exist")
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", ":memory:?" + pragmas},
		{"data/flexfolio.db", "data/flexfolio.db?" + pragmas},
		{"file:test.db?mode=memory", "file:test.db?mode=memory&" + pragmas},
	}
	for _, tt := range tests {
		if got := dsn(tt.in); got != tt.want {
			t.Errorf("dsn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueViolation_OtherErrors(t *testing.T) {
	if got := uniqueViolation(errors.New("boom")); got != "" {
		t.Errorf("uniqueViolation() = %q, want empty", got)
	}
}
