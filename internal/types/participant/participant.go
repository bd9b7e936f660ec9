package participant

import (
	"time"

	"challengeTrackerAPI/internal/types/user"
)

// Participant is one user's enrollment in one challenge. CurrentValue is a running
// total that only changes when a progress entry is logged.
type Participant struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	ChallengeID  int64     `json:"challengeId" db:"challenge_id"`
	CurrentValue float64   `json:"currentValue" db:"current_value"`
	LastUpdated  time.Time `json:"lastUpdated" db:"last_updated"`
}

type WithUser struct {
	Participant
	User user.User `json:"user"`
}
