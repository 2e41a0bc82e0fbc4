package predictions

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
	"github.com/kindpredictions/kindbot/internal/observability"
)

// Service owns the prediction approval lifecycle on top of the store.
// Every fresh submission starts as NOT_APPROVED, moderation moves it into
// one of the three terminal states.
type Service struct {
	db    db.Client
	entry *log.Entry
}

func NewService(client db.Client) *Service {
	return &Service{
		db:    client,
		entry: log.WithField("context", "predictions"),
	}
}

// Submit registers the user if absent and inserts the prediction in the
// initial NOT_APPROVED state.
func (s *Service) Submit(ctx context.Context, userID int64, userName, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return kperrors.ErrEmptyPrediction
	}

	exists, err := s.db.UserExists(ctx, userID)
	if err != nil {
		return errors.WithMessage(err, "cant check user")
	}
	if !exists {
		if err := s.db.AddUser(ctx, userID, userName); err != nil {
			return errors.WithMessage(err, "cant add user")
		}
		s.entry.WithField("user_id", userID).Info("registered new user")
	}

	if err := s.db.AddPrediction(ctx, text, userID); err != nil {
		return errors.WithMessage(err, "cant add prediction")
	}
	observability.RecordSubmission()
	return nil
}

// Moderate applies a moderation transition. Re-applying the same target is
// legal and a no-op effect-wise, a missing id is tolerated by the store.
func (s *Service) Moderate(ctx context.Context, predictionID int64, target db.ApprovalState) error {
	if !target.ModerationTarget() {
		return errors.Wrapf(kperrors.ErrInvalidState, "%q is not a moderation target", target)
	}
	if err := s.db.UpdatePredictionStatus(ctx, predictionID, target); err != nil {
		return errors.WithMessage(err, "cant update prediction status")
	}
	observability.RecordModerationAction(string(target))
	s.entry.WithFields(log.Fields{
		"prediction_id": predictionID,
		"state":         target,
	}).Info("moderated prediction")
	return nil
}

// RandomApproved returns the empty string when nothing is approved yet.
func (s *Service) RandomApproved(ctx context.Context) (string, error) {
	p, err := s.db.GetRandomApprovedPrediction(ctx)
	if err != nil {
		return "", errors.WithMessage(err, "cant get random prediction")
	}
	if p == nil {
		return "", nil
	}
	return p.Text, nil
}

func (s *Service) Pending(ctx context.Context) ([]db.Prediction, error) {
	return s.db.GetUnapprovedPredictions(ctx)
}

func (s *Service) UserPredictions(ctx context.Context, userID int64) ([]db.Prediction, error) {
	return s.db.GetUserPredictions(ctx, userID)
}

func (s *Service) Statistic(ctx context.Context, userID int64) (map[db.ApprovalState]int, error) {
	return s.db.GetUserStatistic(ctx, userID)
}
