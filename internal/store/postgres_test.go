package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestPostgres connects to TEST_DATABASE_URL and resets the schema. Tests are
// skipped when it is not set.
func setupTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	require.NoError(t, err)

	_, err = s.db.Exec(ctx, `DROP TABLE IF EXISTS progress_entries, participants, challenges, users`)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(s.Close)
	return s
}

func TestPostgresAccumulationScenario(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "U", "password", "#3b82f6")
	require.NoError(t, err)
	c, err := s.CreateChallenge(ctx, "hundred hours", 100, "hours",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, c.IsCompleted)

	p, err := s.AddParticipant(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.CurrentValue)

	_, _, err = s.AddProgressEntry(ctx, p.ID, 40, time.Now(), nil)
	require.NoError(t, err)
	notes := "weekend"
	e, updated, err := s.AddProgressEntry(ctx, p.ID, 70, time.Now(), &notes)
	require.NoError(t, err)
	assert.Equal(t, 110.0, updated.CurrentValue)
	require.NotNil(t, e.Notes)
	assert.Equal(t, "weekend", *e.Notes)

	entries, err := s.ListProgressEntries(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	joined, err := s.ListParticipantsForChallenge(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "U", joined[0].User.Username)
}

func TestPostgresNotFound(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	_, err := s.SetChallengeCompletion(ctx, 99, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.AddProgressEntry(ctx, 99, 5, time.Now(), nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AddParticipant(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUser(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresSeed(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s))

	users, err := s.ListUsers(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, users, 7)

	all, err := s.ListParticipants(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestPostgresRejectsNonFiniteTotal(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "U", "password", "#3b82f6")
	require.NoError(t, err)
	c, err := s.CreateChallengeWithParticipants(ctx, "big", 10, "hours", time.Now(), time.Now(), []int64{u.ID})
	require.NoError(t, err)
	ps, err := s.ListParticipantsForChallenge(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	id := ps[0].ID

	_, _, err = s.AddProgressEntry(ctx, id, 1e308, time.Now(), nil)
	require.NoError(t, err)
	_, _, err = s.AddProgressEntry(ctx, id, 1e308, time.Now(), nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = s.AccumulateParticipantProgress(ctx, id, 1e308)
	assert.ErrorIs(t, err, ErrOutOfRange)

	entries, err := s.ListProgressEntries(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPostgresCreateChallengeWithParticipantsUnknownUser(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	_, err := s.CreateChallengeWithParticipants(ctx, "ghosts", 10, "hours", time.Now(), time.Now(), []int64{99})
	assert.ErrorIs(t, err, ErrNotFound)

	challenges, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Empty(t, challenges)
}
