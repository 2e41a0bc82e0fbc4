package bot

import (
	"context"
	"strings"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/kindpredictions/kindbot/internal/config"
)

// maxInFlight bounds concurrent update processing so that storage I/O never
// blocks the polling loop.
const maxInFlight = 8

type UpdateProcessor struct {
	s              Service
	updateHandlers []Handler
	sem            *semaphore.Weighted
}

var registeredHandlers = make(map[string]Handler)

func RegisterUpdateHandler(title string, handler Handler) {
	registeredHandlers[title] = handler
}

func NewUpdateProcessor(s Service) *UpdateProcessor {
	enabledHandlers := make([]Handler, 0)
	for _, handlerName := range config.Get().EnabledHandlers {
		if _, ok := registeredHandlers[handlerName]; !ok || registeredHandlers[handlerName] == nil {
			log.Warnf("no registered handler: %s", handlerName)
			continue
		}
		enabledHandlers = append(enabledHandlers, registeredHandlers[handlerName])
	}

	return &UpdateProcessor{
		s:              s,
		updateHandlers: enabledHandlers,
		sem:            semaphore.NewWeighted(maxInFlight),
	}
}

// Process dispatches the update to the handler chain on a bounded pool.
// Handler failures are logged, never propagated: one bad update must not
// take the long-running process down.
func (up *UpdateProcessor) Process(ctx context.Context, u *api.Update) error {
	if u == nil {
		return errors.New("update is nil")
	}

	chat := u.FromChat()
	user := u.SentFrom()

	if err := up.sem.Acquire(ctx, 1); err != nil {
		return errors.WithMessage(err, "cant acquire processing slot")
	}
	go func() {
		defer up.sem.Release(1)
		for _, handler := range up.updateHandlers {
			if handler == nil {
				continue
			}
			proceed, err := handler.Handle(ctx, u, chat, user)
			if err != nil {
				log.WithError(err).Errorln("cant process update")
				return
			}
			if !proceed {
				log.Trace("not proceeding")
				return
			}
		}
	}()
	return nil
}

func GetUpdatesChans(ctx context.Context, bot *api.BotAPI, config api.UpdateConfig) (api.UpdatesChannel, chan error) {
	ch := make(chan api.Update, bot.Buffer)
	chErr := make(chan error)

	go func() {
		defer close(ch)
		defer close(chErr)
		for {
			select {
			case <-ctx.Done():
				chErr <- ctx.Err()
				return
			default:
				updates, err := bot.GetUpdates(config)
				if err != nil {
					chErr <- err
					return
				}

				for _, update := range updates {
					if update.UpdateID >= config.Offset {
						config.Offset = update.UpdateID + 1
						select {
						case ch <- update:
						case <-ctx.Done():
							chErr <- ctx.Err()
							return
						}
					}
				}
			}
		}
	}()

	return ch, chErr
}

func GetUN(user *api.User) string {
	if user == nil {
		return ""
	}
	userName := user.UserName
	if len(userName) == 0 {
		userName = GetFullName(user)
	}
	return userName
}

func GetFullName(user *api.User) string {
	if user == nil {
		return ""
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
