package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
)

func (c *sqliteClient) AddPrediction(ctx context.Context, text string, userID int64) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO predictions (prediction_text, user_id) VALUES (?, ?)",
		text, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add prediction: %w", err)
	}
	return nil
}

// GetRandomApprovedPrediction returns nil when no approved rows exist, that
// is a valid "no data" outcome, not an error.
func (c *sqliteClient) GetRandomApprovedPrediction(ctx context.Context) (*db.Prediction, error) {
	res := &db.Prediction{}
	err := c.db.GetContext(ctx, res,
		"SELECT prediction_id, prediction_text, approval_state, user_id FROM predictions WHERE approval_state = ? ORDER BY random() LIMIT 1",
		db.StateApproved,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get random approved prediction: %w", err)
	}
	return res, nil
}

func (c *sqliteClient) GetUnapprovedPredictions(ctx context.Context) ([]db.Prediction, error) {
	var res []db.Prediction
	err := c.db.SelectContext(ctx, &res,
		"SELECT prediction_id, prediction_text, approval_state, user_id FROM predictions WHERE approval_state = ?",
		db.StateNotApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get unapproved predictions: %w", err)
	}
	return res, nil
}

// UpdatePredictionStatus is an unconditional last-write-wins update, a
// missing prediction id is a no-op. The state set is enforced here so that a
// forged payload can never write an unknown state.
func (c *sqliteClient) UpdatePredictionStatus(ctx context.Context, predictionID int64, state db.ApprovalState) error {
	if !state.Known() {
		return fmt.Errorf("%w: %q", kperrors.ErrInvalidState, state)
	}
	_, err := c.db.ExecContext(ctx,
		"UPDATE predictions SET approval_state = ? WHERE prediction_id = ?",
		state, predictionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prediction %d: %w", predictionID, err)
	}
	return nil
}

func (c *sqliteClient) GetPredictionByID(ctx context.Context, predictionID int64) (*db.Prediction, error) {
	res := &db.Prediction{}
	err := c.db.GetContext(ctx, res,
		"SELECT prediction_id, prediction_text, approval_state, user_id FROM predictions WHERE prediction_id = ?",
		predictionID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction %d: %w", predictionID, err)
	}
	return res, nil
}

func (c *sqliteClient) GetUserPredictions(ctx context.Context, userID int64) ([]db.Prediction, error) {
	var res []db.Prediction
	err := c.db.SelectContext(ctx, &res,
		"SELECT prediction_id, prediction_text, approval_state, user_id FROM predictions WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions of user %d: %w", userID, err)
	}
	return res, nil
}

func (c *sqliteClient) GetUserStatistic(ctx context.Context, userID int64) (map[db.ApprovalState]int, error) {
	var rows []db.StateCount
	err := c.db.SelectContext(ctx, &rows,
		"SELECT approval_state, COUNT(*) AS cnt FROM predictions WHERE user_id = ? GROUP BY approval_state",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistic of user %d: %w", userID, err)
	}
	stat := make(map[db.ApprovalState]int, len(rows))
	for _, row := range rows {
		stat[row.State] = row.Count
	}
	return stat, nil
}
