package moderation

import (
	"context"
	"fmt"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/kindpredictions/kindbot/internal/i18n"
	"github.com/kindpredictions/kindbot/internal/observability"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

// Messenger is the outbound half of the transport layer, narrowed to what
// the moderation flow needs so tests can substitute a capture fake.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPrompt(ctx context.Context, chatID int64, text string, markup api.InlineKeyboardMarkup) error
}

// Actor is the authorization context of a single privileged call.
type Actor struct {
	ID   int64
	Name string
}

type Result struct {
	PredictionID int64
	State        db.ApprovalState
}

// Moderator is the trust boundary: it couples payload decoding, actor
// authorization and the lifecycle transition.
type Moderator struct {
	lifecycle *predictions.Service
	out       Messenger
	adminID   int64
	lang      string
	entry     *log.Entry
}

func NewModerator(lifecycle *predictions.Service, out Messenger, adminID int64, lang string) *Moderator {
	return &Moderator{
		lifecycle: lifecycle,
		out:       out,
		adminID:   adminID,
		lang:      lang,
		entry:     log.WithField("context", "moderation"),
	}
}

// Authorize compares the actor against the configured administrator. A
// mismatch is never silent: it is logged as a security event and reported to
// the real administrator with the actor's name and id. The caller owns the
// denial reply to the actor itself.
func (m *Moderator) Authorize(ctx context.Context, actor Actor) error {
	if actor.ID == m.adminID {
		return nil
	}
	m.entry.WithFields(log.Fields{
		"actor_id":   actor.ID,
		"actor_name": actor.Name,
	}).Warn("forbidden action attempt")
	observability.RecordForbiddenAction()

	notice := fmt.Sprintf("⚠️ %s (%d) attempted a privileged action", actor.Name, actor.ID)
	if err := m.out.SendText(ctx, m.adminID, notice); err != nil {
		m.entry.WithError(err).Error("cant notify admin about forbidden action")
	}
	return kperrors.ErrForbidden
}

// HandleAction processes a pressed moderation button. Authorization failure
// stops the request before any state is touched.
func (m *Moderator) HandleAction(ctx context.Context, actor Actor, payload string) (*Result, error) {
	if err := m.Authorize(ctx, actor); err != nil {
		return nil, err
	}

	actions, err := DecodeActions(payload)
	if err != nil {
		m.entry.WithError(err).WithField("payload", payload).Error("rejected moderation payload")
		return nil, err
	}

	action := actions[0]
	if err := m.lifecycle.Moderate(ctx, action.PredictionID, action.Target); err != nil {
		return nil, errors.WithMessage(err, "cant apply moderation action")
	}
	return &Result{PredictionID: action.PredictionID, State: action.Target}, nil
}

// RenderPrompt builds the admin-facing moderation prompt for one pending
// prediction: the text plus the three action buttons.
func (m *Moderator) RenderPrompt(p db.Prediction) (string, api.InlineKeyboardMarkup, error) {
	text := fmt.Sprintf("%s:\n#%d — %s", i18n.Get("New prediction pending review", m.lang), p.ID, p.Text)

	buttons := make([]api.InlineKeyboardButton, 0, 3)
	for _, target := range []struct {
		label string
		state db.ApprovalState
	}{
		{"Approve", db.StateApproved},
		{"Reject", db.StateRejected},
		{"Inappropriate", db.StateInappropriate},
	} {
		payload, err := EncodeActions([]Action{{PredictionID: p.ID, Target: target.state}})
		if err != nil {
			return "", api.InlineKeyboardMarkup{}, err
		}
		buttons = append(buttons, api.NewInlineKeyboardButtonData(i18n.Get(target.label, m.lang), payload))
	}
	return text, api.NewInlineKeyboardMarkup(buttons), nil
}

// RenderRecord is the static text a prompt message is edited into once the
// action is applied.
func (m *Moderator) RenderRecord(res Result) string {
	return fmt.Sprintf("#%d → %s", res.PredictionID, res.State)
}
