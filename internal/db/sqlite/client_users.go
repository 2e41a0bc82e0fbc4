package sqlite

import (
	"context"
	"fmt"

	"github.com/kindpredictions/kindbot/internal/db"
)

func (c *sqliteClient) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE user_id = ?", userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	return count > 0, nil
}

// AddUser has no upsert semantics, a duplicate user_id surfaces as an error.
func (c *sqliteClient) AddUser(ctx context.Context, userID int64, userName string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO users (user_id, user_name, state) VALUES (?, ?, ?)",
		userID, userName, db.UserActive,
	)
	if err != nil {
		return fmt.Errorf("failed to add user %d: %w", userID, err)
	}
	return nil
}
