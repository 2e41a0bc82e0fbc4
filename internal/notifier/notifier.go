package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/i18n"
	"github.com/kindpredictions/kindbot/internal/moderation"
	"github.com/kindpredictions/kindbot/internal/predictions"
)

const dailyJobName = "daily_moderation_check"

// Notifier schedules moderation checks: a named recurring daily job and a
// one-shot delayed check. Both entry points are admin-gated. Re-installing a
// job of the same name replaces the previous one.
type Notifier struct {
	lifecycle *predictions.Service
	moderator *moderation.Moderator
	out       moderation.Messenger
	adminID   int64
	lang      string
	cronSpec  string
	onceDelay time.Duration
	verbose   bool
	entry     *log.Entry

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

type Options struct {
	AdminID   int64
	Language  string
	CronSpec  string
	OnceDelay time.Duration
	// Verbose enables the diagnostic "nothing pending" notice (test mode).
	Verbose bool
}

func New(lifecycle *predictions.Service, moderator *moderation.Moderator, out moderation.Messenger, opts Options) *Notifier {
	c := cron.New()
	c.Start()
	return &Notifier{
		lifecycle: lifecycle,
		moderator: moderator,
		out:       out,
		adminID:   opts.AdminID,
		lang:      opts.Language,
		cronSpec:  opts.CronSpec,
		onceDelay: opts.OnceDelay,
		verbose:   opts.Verbose,
		entry:     log.WithField("context", "notifier"),
		cron:      c,
		entries:   map[string]cron.EntryID{},
	}
}

// StartDaily installs the named recurring job. Starting it again replaces
// the existing job, so at most one firing schedule exists per name.
func (n *Notifier) StartDaily(ctx context.Context, actor moderation.Actor) error {
	if err := n.authorizeAndReply(ctx, actor); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if id, ok := n.entries[dailyJobName]; ok {
		n.cron.Remove(id)
	}
	id, err := n.cron.AddFunc(n.cronSpec, func() {
		n.RunCheck(context.Background())
	})
	if err != nil {
		return err
	}
	n.entries[dailyJobName] = id
	n.entry.WithField("spec", n.cronSpec).Info("daily moderation job installed")

	return n.out.SendText(ctx, actor.ID, i18n.Get("Daily moderation job started", n.lang))
}

// StartOnce fires a single check a short fixed delay from now.
func (n *Notifier) StartOnce(ctx context.Context, actor moderation.Actor) error {
	if err := n.authorizeAndReply(ctx, actor); err != nil {
		return err
	}

	time.AfterFunc(n.onceDelay, func() {
		n.RunCheck(context.Background())
	})
	n.entry.WithField("delay", n.onceDelay).Info("one-shot moderation check scheduled")

	return n.out.SendText(ctx, actor.ID, i18n.Get("Moderation check scheduled", n.lang))
}

// Stop removes the named recurring job if present.
func (n *Notifier) Stop(ctx context.Context, actor moderation.Actor) error {
	if err := n.authorizeAndReply(ctx, actor); err != nil {
		return err
	}

	n.mu.Lock()
	id, ok := n.entries[dailyJobName]
	if ok {
		n.cron.Remove(id)
		delete(n.entries, dailyJobName)
	}
	n.mu.Unlock()

	if !ok {
		return n.out.SendText(ctx, actor.ID, i18n.Get("Nothing to stop", n.lang))
	}
	n.entry.Info("daily moderation job removed")
	return n.out.SendText(ctx, actor.ID, i18n.Get("Moderation job stopped", n.lang))
}

// HasDailyJob reports whether the recurring job is currently installed.
func (n *Notifier) HasDailyJob() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.entries[dailyJobName]
	return ok
}

// RunCheck fetches all pending predictions and delivers one moderation
// prompt per row to the administrator. With nothing pending it stays silent
// unless running in diagnostic mode.
func (n *Notifier) RunCheck(ctx context.Context) {
	pending, err := n.lifecycle.Pending(ctx)
	if err != nil {
		n.entry.WithError(err).Error("cant fetch pending predictions")
		return
	}

	if len(pending) == 0 {
		if n.verbose {
			if err := n.out.SendText(ctx, n.adminID, i18n.Get("Nothing pending", n.lang)); err != nil {
				n.entry.WithError(err).Error("cant send nothing-pending notice")
			}
		}
		return
	}

	for _, p := range pending {
		text, markup, err := n.moderator.RenderPrompt(p)
		if err != nil {
			n.entry.WithError(err).WithField("prediction_id", p.ID).Error("cant render prompt")
			continue
		}
		if err := n.out.SendPrompt(ctx, n.adminID, text, markup); err != nil {
			n.entry.WithError(err).WithField("prediction_id", p.ID).Error("cant send prompt")
		}
	}
}

func (n *Notifier) authorizeAndReply(ctx context.Context, actor moderation.Actor) error {
	err := n.moderator.Authorize(ctx, actor)
	if err == nil {
		return nil
	}
	if sendErr := n.out.SendText(ctx, actor.ID, i18n.Get("Forbidden action", n.lang)); sendErr != nil {
		n.entry.WithError(sendErr).Error("cant send denial reply")
	}
	return err
}
