package moderation

import (
	"context"
	"testing"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/kindpredictions/kindbot/internal/db"
	"github.com/kindpredictions/kindbot/internal/db/sqlite"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

const adminID = int64(1)

type sentMessage struct {
	chatID int64
	text   string
	prompt bool
}

type fakeMessenger struct {
	sent []sentMessage
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) SendPrompt(_ context.Context, chatID int64, text string, _ api.InlineKeyboardMarkup) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, prompt: true})
	return nil
}

func (f *fakeMessenger) to(chatID int64) []sentMessage {
	var res []sentMessage
	for _, m := range f.sent {
		if m.chatID == chatID {
			res = append(res, m)
		}
	}
	return res
}

func newModeratorFixture(t *testing.T) (*Moderator, *fakeMessenger, *predictions.Service, db.Client) {
	t.Helper()
	client, err := sqlite.NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	lifecycle := predictions.NewService(client)
	out := &fakeMessenger{}
	return NewModerator(lifecycle, out, adminID, "en"), out, lifecycle, client
}

func submitOne(t *testing.T, lifecycle *predictions.Service, client db.Client) db.Prediction {
	t.Helper()
	ctx := context.Background()
	if err := lifecycle.Submit(ctx, 42, "alice", "Rain tomorrow"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rows, err := client.GetUserPredictions(ctx, 42)
	if err != nil {
		t.Fatalf("get user predictions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("unexpected prediction count: %d", len(rows))
	}
	return rows[0]
}

func TestHandleActionAppliesTransition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	moderator, _, lifecycle, client := newModeratorFixture(t)
	p := submitOne(t, lifecycle, client)

	payload, err := EncodeActions([]Action{{PredictionID: p.ID, Target: db.StateApproved}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	res, err := moderator.HandleAction(ctx, Actor{ID: adminID, Name: "admin"}, payload)
	if err != nil {
		t.Fatalf("handle action: %v", err)
	}
	if res.PredictionID != p.ID || res.State != db.StateApproved {
		t.Fatalf("unexpected result: %#v", res)
	}

	got, err := client.GetPredictionByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if got.State != db.StateApproved {
		t.Fatalf("unexpected stored state: %q", got.State)
	}
}

// The historical handler kept executing the transition after answering a
// forbidden actor. Authorization failure must stop the request before any
// state is touched.
func TestHandleActionDeniesAndStops(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	moderator, out, lifecycle, client := newModeratorFixture(t)
	p := submitOne(t, lifecycle, client)

	payload, err := EncodeActions([]Action{{PredictionID: p.ID, Target: db.StateApproved}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = moderator.HandleAction(ctx, Actor{ID: 99, Name: "mallory"}, payload)
	if !errors.Is(err, kperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	got, err := client.GetPredictionByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if got.State != db.StateNotApproved {
		t.Fatalf("denied action must not mutate state, got %q", got.State)
	}

	notices := out.to(adminID)
	if len(notices) != 1 {
		t.Fatalf("expected exactly one security notice to the admin, got %d", len(notices))
	}
}

func TestHandleActionRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	moderator, _, lifecycle, client := newModeratorFixture(t)
	p := submitOne(t, lifecycle, client)

	_, err := moderator.HandleAction(ctx, Actor{ID: adminID, Name: "admin"}, "pressed the wrong button")
	if !errors.Is(err, kperrors.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}

	got, err := client.GetPredictionByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if got.State != db.StateNotApproved {
		t.Fatalf("malformed payload must not mutate state, got %q", got.State)
	}
}

func TestRenderPromptButtonsRoundTrip(t *testing.T) {
	t.Parallel()

	moderator, _, lifecycle, client := newModeratorFixture(t)
	p := submitOne(t, lifecycle, client)

	text, markup, err := moderator.RenderPrompt(p)
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if text == "" {
		t.Fatalf("empty prompt text")
	}
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 3 {
		t.Fatalf("expected one row of three buttons, got %#v", markup.InlineKeyboard)
	}

	wantTargets := map[db.ApprovalState]bool{
		db.StateApproved:      false,
		db.StateRejected:      false,
		db.StateInappropriate: false,
	}
	for _, button := range markup.InlineKeyboard[0] {
		if button.CallbackData == nil {
			t.Fatalf("button %q has no callback data", button.Text)
		}
		actions, err := DecodeActions(*button.CallbackData)
		if err != nil {
			t.Fatalf("button payload does not decode: %v", err)
		}
		if actions[0].PredictionID != p.ID {
			t.Fatalf("button targets prediction %d, want %d", actions[0].PredictionID, p.ID)
		}
		wantTargets[actions[0].Target] = true
	}
	for target, seen := range wantTargets {
		if !seen {
			t.Fatalf("no button for target %q", target)
		}
	}
}
