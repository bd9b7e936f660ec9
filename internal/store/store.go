// Package store owns all challenge tracker entity state. Every other component reads
// and mutates users, challenges, participants and progress entries through Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/participant"
	"challengeTrackerAPI/internal/types/progress"
	"challengeTrackerAPI/internal/types/user"
)

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInconsistent is returned when a stored reference points at nothing.
	ErrInconsistent = errors.New("store inconsistency")
	// ErrOutOfRange is returned when adding progress would push a running total past
	// the float64 range.
	ErrOutOfRange = errors.New("progress total out of range")
)

type Store interface {
	CreateUser(ctx context.Context, username, password, avatarColor string) (*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	ListUsers(ctx context.Context, limit int) ([]*user.User, error)

	CreateChallenge(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time) (*challenge.Challenge, error)
	// CreateChallengeWithParticipants creates a challenge and enrolls userIDs in one
	// step. Nothing is written when any user does not exist.
	CreateChallengeWithParticipants(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time, userIDs []int64) (*challenge.Challenge, error)
	GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error)
	ListChallenges(ctx context.Context) ([]*challenge.Challenge, error)
	SetChallengeCompletion(ctx context.Context, id int64, completed bool) (*challenge.Challenge, error)

	AddParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*participant.Participant, error)
	FindParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error)
	ListParticipantsForChallenge(ctx context.Context, challengeID int64) ([]participant.WithUser, error)
	ListParticipants(ctx context.Context) ([]participant.WithUser, error)
	// AccumulateParticipantProgress fails with ErrOutOfRange, leaving the total alone,
	// when the new total would not be finite.
	AccumulateParticipantProgress(ctx context.Context, participantID int64, delta float64) (*participant.Participant, error)

	// AddProgressEntry records an entry and adds its value to the participant in one
	// step. Nothing is written when the participant does not exist or the new total
	// would be out of range.
	AddProgressEntry(ctx context.Context, participantID int64, value float64, date time.Time, notes *string) (*progress.Entry, *participant.Participant, error)
	ListProgressEntries(ctx context.Context, participantID int64) ([]*progress.Entry, error)

	Ping(ctx context.Context) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// checkTotal reports ErrOutOfRange when current+delta is not a finite number.
func checkTotal(participantID int64, current, delta float64) error {
	total := current + delta
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return fmt.Errorf("participant %d: %v + %v: %w", participantID, current, delta, ErrOutOfRange)
	}
	return nil
}
