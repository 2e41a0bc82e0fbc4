package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/bot"
	"github.com/kindpredictions/kindbot/internal/config"
	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/kindpredictions/kindbot/internal/i18n"
	"github.com/kindpredictions/kindbot/internal/moderation"
	"github.com/kindpredictions/kindbot/internal/notifier"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

const sourceURL = "https://github.com/kindpredictions/kindbot"

type Commands struct {
	s         bot.Service
	lifecycle *predictions.Service
	notifier  *notifier.Notifier
	cfg       config.Config
	entry     *log.Entry
}

func NewCommands(s bot.Service, lifecycle *predictions.Service, notifier *notifier.Notifier, cfg config.Config) *Commands {
	return &Commands{
		s:         s,
		lifecycle: lifecycle,
		notifier:  notifier,
		cfg:       cfg,
		entry:     log.WithField("handler", "commands"),
	}
}

func (h *Commands) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if chat == nil || user == nil {
		return true, nil
	}
	switch {
	case
		u.Message == nil,
		user.IsBot,
		!u.Message.IsCommand():
		return true, nil
	}
	m := u.Message
	lang := h.cfg.DefaultLanguage
	b := h.s.GetBot()
	h.entry.Trace("command: ", m.Command())

	switch m.Command() {
	case "start":
		h.reply(chat.ID, i18n.Get("commands: /predict /add /my /stats /help /about", lang))

	case "help":
		h.reply(chat.ID, i18n.Get("There is only one person that can help you", lang)+": @"+h.cfg.AdminUserName)

	case "about":
		msg := api.NewMessage(chat.ID,
			i18n.Get("Check out source and suggest an issue", lang)+": ["+sourceURL+"]("+sourceURL+")\n"+
				i18n.Get("Ask about this bot", lang)+": @"+h.cfg.AdminUserName,
		)
		msg.ParseMode = api.ModeMarkdown
		if _, err := b.Send(msg); err != nil {
			return false, errors.WithMessage(err, "cant send about")
		}

	case "add":
		err := h.lifecycle.Submit(ctx, user.ID, bot.GetUN(user), m.CommandArguments())
		switch {
		case errors.Is(err, kperrors.ErrEmptyPrediction):
			h.reply(chat.ID, i18n.Get("Please add the prediction text after the command, like this", lang)+": /add <...>")
		case err != nil:
			h.reply(chat.ID, i18n.Get("Could not complete the action, please try again", lang))
			return false, errors.WithMessage(err, "cant submit prediction")
		default:
			h.reply(chat.ID, i18n.Get("Thank you! Your prediction will be reviewed", lang))
		}

	case "predict":
		text, err := h.lifecycle.RandomApproved(ctx)
		if err != nil {
			h.reply(chat.ID, i18n.Get("Could not complete the action, please try again", lang))
			return false, errors.WithMessage(err, "cant get prediction")
		}
		if text == "" {
			text = i18n.Get("No approved predictions yet, come back later", lang)
		}
		h.reply(chat.ID, text)

	case "my":
		rows, err := h.lifecycle.UserPredictions(ctx, user.ID)
		if err != nil {
			h.reply(chat.ID, i18n.Get("Could not complete the action, please try again", lang))
			return false, errors.WithMessage(err, "cant get user predictions")
		}
		if len(rows) == 0 {
			h.reply(chat.ID, i18n.Get("You have no predictions yet", lang))
			break
		}
		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, i18n.Get("Your predictions", lang)+":")
		for _, p := range rows {
			lines = append(lines, fmt.Sprintf("#%d [%s] %s", p.ID, p.State, p.Text))
		}
		h.reply(chat.ID, strings.Join(lines, "\n"))

	case "stats":
		stat, err := h.lifecycle.Statistic(ctx, user.ID)
		if err != nil {
			h.reply(chat.ID, i18n.Get("Could not complete the action, please try again", lang))
			return false, errors.WithMessage(err, "cant get user statistic")
		}
		h.reply(chat.ID, formatStatistic(i18n.Get("Your statistics", lang), stat))

	case "notify":
		return false, h.gated(h.notifier.StartDaily(ctx, actorOf(user)))

	case "notify_once":
		return false, h.gated(h.notifier.StartOnce(ctx, actorOf(user)))

	case "notify_stop":
		return false, h.gated(h.notifier.Stop(ctx, actorOf(user)))

	default:
		h.entry.Trace("unknown command")
		return true, nil
	}
	return false, nil
}

// gated swallows authorization denials: the denial reply and the security
// notice are already sent by the notifier.
func (h *Commands) gated(err error) error {
	if errors.Is(err, kperrors.ErrForbidden) {
		return nil
	}
	return err
}

func (h *Commands) reply(chatID int64, text string) {
	msg := api.NewMessage(chatID, text)
	msg.DisableNotification = true
	if _, err := h.s.GetBot().Send(msg); err != nil {
		h.entry.WithError(err).Errorln("cant send reply")
	}
}

func actorOf(user *api.User) moderation.Actor {
	return moderation.Actor{ID: user.ID, Name: bot.GetUN(user)}
}

func formatStatistic(title string, stat map[db.ApprovalState]int) string {
	states := make([]string, 0, len(stat))
	for state := range stat {
		states = append(states, string(state))
	}
	sort.Strings(states)

	lines := make([]string, 0, len(states)+1)
	lines = append(lines, title+":")
	for _, state := range states {
		lines = append(lines, fmt.Sprintf("%s: %d", state, stat[db.ApprovalState(state)]))
	}
	return strings.Join(lines, "\n")
}
