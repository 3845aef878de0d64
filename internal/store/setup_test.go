package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/tasktreasure/tasktreasure/internal/database"
	"github.com/tasktreasure/tasktreasure/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// setupFileDB opens a file-backed database, which uses a real connection
// pool unlike ":memory:".
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "tasktreasure.db"))
	if err != nil {
		t.Fatalf("open file db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedFamily creates a parent with one child.
func seedFamily(t *testing.T, db *sql.DB, email string) (*model.Parent, *model.Child) {
	t.Helper()
	ctx := context.Background()
	p, err := NewParentStore(db).Create(ctx, "Anna", email, "hash")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	c, err := NewChildStore(db).Create(ctx, p.ID, ChildInput{Name: "Elsa", Avatar: "fox"})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return p, c
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
