package progress

import (
	"time"

	"challengeTrackerAPI/internal/types/participant"
)

type Entry struct {
	ID            int64     `json:"id" db:"id"`
	ParticipantID int64     `json:"participantId" db:"participant_id"`
	Value         float64   `json:"value" db:"value"`
	Date          time.Time `json:"date" db:"date"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

type LogProgressRequest struct {
	ParticipantID int64   `json:"participantId" validate:"required,gt=0"`
	Value         float64 `json:"value" validate:"gt=0,lte=1000000000"`
	Date          string  `json:"date" validate:"required"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type LogProgressResponse struct {
	Entry       *Entry                   `json:"entry"`
	Participant *participant.Participant `json:"participant"`
}
