package handlers

import (
	"context"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/bot"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/kindpredictions/kindbot/internal/i18n"
	"github.com/kindpredictions/kindbot/internal/moderation"
)

// Moderation turns pressed moderation buttons into lifecycle transitions.
// The callback is acknowledged on every path: delivery is at-least-once and
// an unanswered callback leaves the admin's client spinning.
type Moderation struct {
	s         bot.Service
	moderator *moderation.Moderator
	lang      string
	entry     *log.Entry
}

func NewModeration(s bot.Service, moderator *moderation.Moderator, lang string) *Moderation {
	return &Moderation{
		s:         s,
		moderator: moderator,
		lang:      lang,
		entry:     log.WithField("handler", "moderation"),
	}
}

func (h *Moderation) Handle(ctx context.Context, u *api.Update, _ *api.Chat, _ *api.User) (bool, error) {
	if u.CallbackQuery == nil {
		return true, nil
	}
	cb := u.CallbackQuery
	if cb.From == nil {
		return true, nil
	}
	b := h.s.GetBot()
	actor := moderation.Actor{ID: cb.From.ID, Name: bot.GetUN(cb.From)}

	res, err := h.moderator.HandleAction(ctx, actor, cb.Data)
	switch {
	case errors.Is(err, kperrors.ErrForbidden):
		h.answer(cb.ID, i18n.Get("Forbidden action", h.lang))
		return false, nil
	case errors.Is(err, kperrors.ErrMalformedPayload):
		h.answer(cb.ID, i18n.Get("Could not complete the action, please try again", h.lang))
		h.entry.WithField("payload", cb.Data).Warn("dropped malformed callback payload")
		return false, nil
	case err != nil:
		h.answer(cb.ID, i18n.Get("Could not complete the action, please try again", h.lang))
		return false, errors.WithMessage(err, "cant handle moderation action")
	}

	h.answer(cb.ID, "")

	// Duplicate deliveries land here too: the edit re-applies the same
	// final text, which is harmless.
	if cb.Message != nil {
		edit := api.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, h.moderator.RenderRecord(*res))
		if _, err := b.Request(edit); err != nil {
			h.entry.WithError(err).Errorln("cant edit prompt message")
		}
	}
	return false, nil
}

func (h *Moderation) answer(callbackID, text string) {
	if _, err := h.s.GetBot().Request(api.NewCallback(callbackID, text)); err != nil {
		h.entry.WithError(err).Errorln("cant answer callback")
	}
}
