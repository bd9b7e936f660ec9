package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/participant"
	"challengeTrackerAPI/internal/types/progress"
)

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	return store.NewMemoryStore()
}

func mustUser(t *testing.T, s store.Store, name string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "password", "#3b82f6")
	require.NoError(t, err)
	return u.ID
}

func mustChallenge(t *testing.T, s store.Store, title string, target float64) int64 {
	t.Helper()
	c, err := s.CreateChallenge(context.Background(), title, target, "hours",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return c.ID
}

func requireFields(t *testing.T, err error, fields ...string) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	got := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		got = append(got, f.Field)
	}
	require.ElementsMatch(t, fields, got)
	return verr
}

// cancellingStore cancels the request context as soon as a challenge has been written,
// as a disconnecting client would.
type cancellingStore struct {
	store.Store
	cancel context.CancelFunc
}

func (s *cancellingStore) CreateChallenge(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time) (*challenge.Challenge, error) {
	defer s.cancel()
	return s.Store.CreateChallenge(ctx, title, targetValue, unit, startDate, endDate)
}

func (s *cancellingStore) CreateChallengeWithParticipants(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time, userIDs []int64) (*challenge.Challenge, error) {
	defer s.cancel()
	return s.Store.CreateChallengeWithParticipants(ctx, title, targetValue, unit, startDate, endDate, userIDs)
}

// outOfRangeStore fails every progress write as if the total had overflowed.
type outOfRangeStore struct {
	store.Store
}

func (s *outOfRangeStore) AddProgressEntry(ctx context.Context, participantID int64, value float64, date time.Time, notes *string) (*progress.Entry, *participant.Participant, error) {
	return nil, nil, fmt.Errorf("participant %d: %w", participantID, store.ErrOutOfRange)
}
