package sqlite

import (
	"context"
	"testing"

	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/pkg/errors"
)

func newTestClient(t *testing.T) *sqliteClient {
	t.Helper()
	client, err := NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func addPrediction(t *testing.T, client *sqliteClient, text string, userID int64) db.Prediction {
	t.Helper()
	ctx := context.Background()
	if err := client.AddPrediction(ctx, text, userID); err != nil {
		t.Fatalf("add prediction: %v", err)
	}
	rows, err := client.GetUserPredictions(ctx, userID)
	if err != nil {
		t.Fatalf("get user predictions: %v", err)
	}
	for _, p := range rows {
		if p.Text == text {
			return p
		}
	}
	t.Fatalf("inserted prediction %q not found", text)
	return db.Prediction{}
}

func TestFreshPredictionIsNotApproved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	p := addPrediction(t, client, "Rain tomorrow", 42)
	if p.State != db.StateNotApproved {
		t.Fatalf("fresh prediction state: got %q want %q", p.State, db.StateNotApproved)
	}

	got, err := client.GetPredictionByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get prediction by id: %v", err)
	}
	if got == nil {
		t.Fatalf("prediction %d not found", p.ID)
	}
	if got.Text != "Rain tomorrow" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.UserID == nil || *got.UserID != 42 {
		t.Fatalf("unexpected owner: %v", got.UserID)
	}
}

func TestRandomApprovedPrediction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	got, err := client.GetRandomApprovedPrediction(ctx)
	if err != nil {
		t.Fatalf("random approved on empty table: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no approved prediction, got %#v", got)
	}

	addPrediction(t, client, "stays pending", 1)
	rejected := addPrediction(t, client, "gets rejected", 1)
	approved := addPrediction(t, client, "Rain tomorrow", 1)

	if err := client.UpdatePredictionStatus(ctx, rejected.ID, db.StateRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := client.UpdatePredictionStatus(ctx, approved.ID, db.StateApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err = client.GetRandomApprovedPrediction(ctx)
		if err != nil {
			t.Fatalf("random approved: %v", err)
		}
		if got == nil {
			t.Fatalf("expected an approved prediction")
		}
		if got.State != db.StateApproved || got.Text != "Rain tomorrow" {
			t.Fatalf("random approved returned a non-approved row: %#v", got)
		}
	}
}

func TestUnapprovedPredictionsOnlyPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	first := addPrediction(t, client, "first", 7)
	second := addPrediction(t, client, "second", 7)
	if err := client.UpdatePredictionStatus(ctx, first.ID, db.StateInappropriate); err != nil {
		t.Fatalf("flag: %v", err)
	}

	pending, err := client.GetUnapprovedPredictions(ctx)
	if err != nil {
		t.Fatalf("get unapproved: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("unexpected pending count: %d", len(pending))
	}
	if pending[0].ID != second.ID || pending[0].State != db.StateNotApproved {
		t.Fatalf("unexpected pending row: %#v", pending[0])
	}
}

func TestUpdatePredictionStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	p := addPrediction(t, client, "twice approved", 3)

	// applying the same target twice ends in the same stored state
	for i := 0; i < 2; i++ {
		if err := client.UpdatePredictionStatus(ctx, p.ID, db.StateApproved); err != nil {
			t.Fatalf("approve #%d: %v", i+1, err)
		}
	}
	got, err := client.GetPredictionByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if got.State != db.StateApproved {
		t.Fatalf("unexpected state: %q", got.State)
	}

	// missing id is a silent no-op
	if err := client.UpdatePredictionStatus(ctx, 999999, db.StateRejected); err != nil {
		t.Fatalf("update of missing id must not error: %v", err)
	}

	// the closed state set is enforced at the boundary
	err = client.UpdatePredictionStatus(ctx, p.ID, db.ApprovalState("published"))
	if !errors.Is(err, kperrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestGetUserStatistic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	a := addPrediction(t, client, "a", 9)
	b := addPrediction(t, client, "b", 9)
	addPrediction(t, client, "c", 9)
	addPrediction(t, client, "other user", 10)

	if err := client.UpdatePredictionStatus(ctx, a.ID, db.StateApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := client.UpdatePredictionStatus(ctx, b.ID, db.StateRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	stat, err := client.GetUserStatistic(ctx, 9)
	if err != nil {
		t.Fatalf("get statistic: %v", err)
	}
	want := map[db.ApprovalState]int{
		db.StateApproved:    1,
		db.StateRejected:    1,
		db.StateNotApproved: 1,
	}
	if len(stat) != len(want) {
		t.Fatalf("unexpected statistic: %#v", stat)
	}
	for state, count := range want {
		if stat[state] != count {
			t.Fatalf("statistic for %q: got %d want %d", state, stat[state], count)
		}
	}
}

func TestSeedDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	if err := client.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
	got, err := client.GetRandomApprovedPrediction(ctx)
	if err != nil {
		t.Fatalf("random approved after seed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a seeded approved prediction")
	}

	// seeding again must not duplicate rows
	if err := client.SeedDefaults(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var count int
	if err := client.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM predictions"); err != nil {
		t.Fatalf("count predictions: %v", err)
	}
	if count != 6 {
		t.Fatalf("unexpected prediction count after double seed: %d", count)
	}
}
