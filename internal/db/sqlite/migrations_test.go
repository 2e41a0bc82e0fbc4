package sqlite

import (
	"context"
	"testing"
)

func TestMigrationsApplyOnFreshAndExistingDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	client, err := NewSQLiteClient(ctx, dir, "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	if err := client.AddUser(ctx, 42, "alice"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopening the same file must be a no-op migration-wise and keep data
	client, err = NewSQLiteClient(ctx, dir, "test.db")
	if err != nil {
		t.Fatalf("reopen sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	exists, err := client.UserExists(ctx, 42)
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if !exists {
		t.Fatalf("user 42 lost across reopen")
	}
}
