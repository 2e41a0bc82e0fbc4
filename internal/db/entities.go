package db

type (
	// ApprovalState is the moderation state of a prediction. The string
	// values are stored verbatim in the predictions table.
	ApprovalState string

	// UserState is reserved for a future soft-block feature, only stored for now.
	UserState string

	User struct {
		ID       int64     `db:"user_id"`
		UserName string    `db:"user_name"`
		State    UserState `db:"state"`
	}

	Prediction struct {
		ID    int64         `db:"prediction_id"`
		Text  string        `db:"prediction_text"`
		State ApprovalState `db:"approval_state"`
		// UserID is NULL for seeded predictions that have no owner.
		UserID *int64 `db:"user_id"`
	}

	StateCount struct {
		State ApprovalState `db:"approval_state"`
		Count int           `db:"cnt"`
	}
)

const (
	StateNotApproved   ApprovalState = "not approved"
	StateApproved      ApprovalState = "approved"
	StateRejected      ApprovalState = "rejected"
	StateInappropriate ApprovalState = "inappropriate"

	UserActive   UserState = "active"
	UserInactive UserState = "inactive"
)

// Known reports whether s is one of the four approval states.
func (s ApprovalState) Known() bool {
	switch s {
	case StateNotApproved, StateApproved, StateRejected, StateInappropriate:
		return true
	}
	return false
}

// ModerationTarget reports whether s is a legal target of a moderation
// action. NOT_APPROVED is the sole initial state and never a target.
func (s ApprovalState) ModerationTarget() bool {
	return s.Known() && s != StateNotApproved
}
