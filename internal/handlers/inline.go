package handlers

import (
	"context"
	"fmt"
	"math/rand"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/bot"
	"github.com/kindpredictions/kindbot/internal/i18n"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

// Inline serves inline queries: the classic bun percentage joke plus a
// random approved prediction when one exists. Results are personal and
// never cached.
type Inline struct {
	s         bot.Service
	lifecycle *predictions.Service
	lang      string
	entry     *log.Entry
}

func NewInline(s bot.Service, lifecycle *predictions.Service, lang string) *Inline {
	return &Inline{
		s:         s,
		lifecycle: lifecycle,
		lang:      lang,
		entry:     log.WithField("handler", "inline"),
	}
}

func (h *Inline) Handle(ctx context.Context, u *api.Update, _ *api.Chat, _ *api.User) (bool, error) {
	if u.InlineQuery == nil {
		return true, nil
	}

	results := []interface{}{
		api.NewInlineQueryResultArticle(
			uuid.New(),
			i18n.Get("How much are you a bun?", h.lang),
			fmt.Sprintf("%d%% булка!", 50+rand.Intn(51)),
		),
	}

	prediction, err := h.lifecycle.RandomApproved(ctx)
	if err != nil {
		h.entry.WithError(err).Errorln("cant get random prediction for inline query")
	} else if prediction != "" {
		results = append(results, api.NewInlineQueryResultArticle(
			uuid.New(),
			i18n.Get("Random prediction", h.lang),
			prediction,
		))
	}

	if _, err := h.s.GetBot().Request(api.InlineConfig{
		InlineQueryID: u.InlineQuery.ID,
		IsPersonal:    true,
		CacheTime:     0,
		Results:       results,
	}); err != nil {
		return false, errors.WithMessage(err, "cant answer inline query")
	}
	return false, nil
}
