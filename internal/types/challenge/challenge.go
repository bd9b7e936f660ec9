package challenge

import (
	"time"

	"challengeTrackerAPI/internal/types/participant"
)

type Challenge struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	TargetValue float64   `json:"targetValue" db:"target_value"`
	Unit        string    `json:"unit" db:"unit"`
	StartDate   time.Time `json:"startDate" db:"start_date"`
	EndDate     time.Time `json:"endDate" db:"end_date"`
	IsCompleted bool      `json:"isCompleted" db:"is_completed"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// WithParticipants is a challenge joined with its enrolled users.
type WithParticipants struct {
	Challenge
	Participants []participant.WithUser `json:"participants"`
}

type Partition struct {
	Active    []WithParticipants `json:"active"`
	Completed []WithParticipants `json:"completed"`
}

// CreateChallengeRequest carries dates as ISO strings; they are parsed by the service.
type CreateChallengeRequest struct {
	Title        string  `json:"title" validate:"required"`
	TargetValue  float64 `json:"targetValue" validate:"gt=0,lte=1000000000"`
	Unit         string  `json:"unit" validate:"required"`
	StartDate    string  `json:"startDate" validate:"required"`
	EndDate      string  `json:"endDate" validate:"required"`
	Participants []int64 `json:"participants,omitempty" validate:"omitempty,dive,gt=0"`
}

type UpdateStatusRequest struct {
	IsCompleted *bool `json:"isCompleted"`
}

type JoinRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}
