package moderation

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/kindpredictions/kindbot/internal/db"
	kperrors "github.com/kindpredictions/kindbot/internal/errors"
)

// Action is a single moderation instruction round-tripped through the
// callback button payload. The wire format is a JSON array to allow future
// batching, only the first element is consulted today.
type Action struct {
	PredictionID int64            `json:"id"`
	Target       db.ApprovalState `json:"state"`
}

func EncodeActions(actions []Action) (string, error) {
	if len(actions) == 0 {
		return "", errors.Wrap(kperrors.ErrMalformedPayload, "no actions to encode")
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return "", errors.WithMessage(err, "cant encode actions")
	}
	return string(raw), nil
}

// DecodeActions rejects anything that is not a non-empty list of actions
// with legal moderation targets. A payload that fails here must never reach
// the store.
func DecodeActions(payload string) ([]Action, error) {
	var actions []Action
	if err := json.Unmarshal([]byte(payload), &actions); err != nil {
		return nil, errors.Wrapf(kperrors.ErrMalformedPayload, "decode: %v", err)
	}
	if len(actions) == 0 {
		return nil, errors.Wrap(kperrors.ErrMalformedPayload, "empty action list")
	}
	for _, action := range actions {
		if action.PredictionID <= 0 {
			return nil, errors.Wrapf(kperrors.ErrMalformedPayload, "bad prediction id %d", action.PredictionID)
		}
		if !action.Target.ModerationTarget() {
			return nil, errors.Wrapf(kperrors.ErrMalformedPayload, "bad target state %q", action.Target)
		}
	}
	return actions, nil
}
