package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func mustChallenge(t *testing.T, s Store, title string, target float64) int64 {
	t.Helper()
	c, err := s.CreateChallenge(context.Background(), title, target, "hours",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return c.ID
}

func mustUser(t *testing.T, s Store, name string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "password", "#3b82f6")
	require.NoError(t, err)
	return u.ID
}

func TestSequentialIDsPerKind(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, int64(1), mustUser(t, s, "a"))
	assert.Equal(t, int64(2), mustUser(t, s, "b"))
	assert.Equal(t, int64(1), mustChallenge(t, s, "first", 10))
	assert.Equal(t, int64(2), mustChallenge(t, s, "second", 10))

	p, err := s.AddParticipant(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestCreateChallengeDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustChallenge(t, s, "Study for 712 hours", 712)
	c, err := s.GetChallenge(ctx, id)
	require.NoError(t, err)

	assert.False(t, c.IsCompleted)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, 712.0, c.TargetValue)

	again, err := s.GetChallenge(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetChallenge(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetParticipant(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindParticipant(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetChallengeCompletionUnknownLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustChallenge(t, s, "only", 10)

	before, err := s.ListChallenges(ctx)
	require.NoError(t, err)

	_, err = s.SetChallengeCompletion(ctx, 99, true)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetChallengeCompletionToggles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustChallenge(t, s, "toggle", 10)

	c, err := s.SetChallengeCompletion(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, c.IsCompleted)

	c, err = s.SetChallengeCompletion(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, c.IsCompleted)
}

func TestAddParticipantValidatesReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := mustUser(t, s, "u")
	challengeID := mustChallenge(t, s, "c", 10)

	_, err := s.AddParticipant(ctx, 42, challengeID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddParticipant(ctx, userID, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := s.AddParticipant(ctx, userID, challengeID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.CurrentValue)
	assert.False(t, p.LastUpdated.IsZero())
}

func TestAccumulationScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := mustUser(t, s, "U")
	challengeID := mustChallenge(t, s, "hundred hours", 100)

	p, err := s.AddParticipant(ctx, userID, challengeID)
	require.NoError(t, err)

	_, _, err = s.AddProgressEntry(ctx, p.ID, 40, time.Now(), nil)
	require.NoError(t, err)
	notes := "long weekend"
	entry, updated, err := s.AddProgressEntry(ctx, p.ID, 70, time.Now(), &notes)
	require.NoError(t, err)

	assert.Equal(t, 110.0, updated.CurrentValue)
	assert.Equal(t, int64(2), entry.ID)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "long weekend", *entry.Notes)

	stored, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 110.0, stored.CurrentValue)
	assert.True(t, stored.LastUpdated.After(p.LastUpdated))

	entries, err := s.ListProgressEntries(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 40.0, entries[0].Value)
	assert.Equal(t, 70.0, entries[1].Value)
}

func TestAddProgressEntryUnknownParticipantWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := mustUser(t, s, "U")
	challengeID := mustChallenge(t, s, "c", 10)
	p, err := s.AddParticipant(ctx, userID, challengeID)
	require.NoError(t, err)

	_, _, err = s.AddProgressEntry(ctx, 999, 5, time.Now(), nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, s.entries)
	entries, err := s.ListProgressEntries(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, entries)

	unchanged, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p, *unchanged)

	// the next entry still gets id 1
	e, _, err := s.AddProgressEntry(ctx, p.ID, 1, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}

func TestAccumulateParticipantProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.AddParticipant(ctx, mustUser(t, s, "u"), mustChallenge(t, s, "c", 10))
	require.NoError(t, err)

	updated, err := s.AccumulateParticipantProgress(ctx, p.ID, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, updated.CurrentValue)

	_, err = s.AccumulateParticipantProgress(ctx, 77, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListParticipantsForChallengeJoinsUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	c1 := mustChallenge(t, s, "c1", 10)
	c2 := mustChallenge(t, s, "c2", 10)

	_, err := s.AddParticipant(ctx, bob, c1)
	require.NoError(t, err)
	_, err = s.AddParticipant(ctx, alice, c2)
	require.NoError(t, err)
	_, err = s.AddParticipant(ctx, alice, c1)
	require.NoError(t, err)

	ps, err := s.ListParticipantsForChallenge(ctx, c1)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "bob", ps[0].User.Username)
	assert.Equal(t, "alice", ps[1].User.Username)

	all, err := s.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	empty, err := s.ListParticipantsForChallenge(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListParticipantsMissingUserIsInconsistent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := mustUser(t, s, "ghost")
	challengeID := mustChallenge(t, s, "c", 10)
	_, err := s.AddParticipant(ctx, userID, challengeID)
	require.NoError(t, err)

	delete(s.users, userID)

	_, err = s.ListParticipantsForChallenge(ctx, challengeID)
	assert.ErrorIs(t, err, ErrInconsistent)
	_, err = s.ListParticipants(ctx)
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustChallenge(t, s, "c", 10)

	c, err := s.GetChallenge(ctx, id)
	require.NoError(t, err)
	c.IsCompleted = true
	c.Title = "mutated"

	fresh, err := s.GetChallenge(ctx, id)
	require.NoError(t, err)
	assert.False(t, fresh.IsCompleted)
	assert.Equal(t, "c", fresh.Title)
}

func TestListUsersLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d"} {
		mustUser(t, s, name)
	}

	users, err := s.ListUsers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a", users[0].Username)
	assert.Equal(t, "c", users[2].Username)

	all, err := s.ListUsers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestConcurrentProgressAccumulates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := s.AddParticipant(ctx, mustUser(t, s, "u"), mustChallenge(t, s, "c", 1000))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AddProgressEntry(ctx, p.ID, 2, time.Now(), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.CurrentValue)

	entries, err := s.ListProgressEntries(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

func TestCancelledContextDoesNotMutate(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateUser(ctx, "late", "pw", "#fff")
	assert.ErrorIs(t, err, context.Canceled)

	users, err := s.ListUsers(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAddProgressEntryRejectsNonFiniteTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.AddParticipant(ctx, mustUser(t, s, "u"), mustChallenge(t, s, "c", 10))
	require.NoError(t, err)

	_, first, err := s.AddProgressEntry(ctx, p.ID, 1e308, time.Now(), nil)
	require.NoError(t, err)

	_, _, err = s.AddProgressEntry(ctx, p.ID, 1e308, time.Now(), nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = s.AccumulateParticipantProgress(ctx, p.ID, 1e308)
	assert.ErrorIs(t, err, ErrOutOfRange)

	got, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1e308, got.CurrentValue)
	assert.Equal(t, first.LastUpdated, got.LastUpdated)

	entries, err := s.ListProgressEntries(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = s.ListParticipants(ctx)
	assert.NoError(t, err)
}

func TestCreateChallengeWithParticipants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	c, err := s.CreateChallengeWithParticipants(ctx, "pair", 10, "days",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), []int64{bob, alice})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	ps, err := s.ListParticipantsForChallenge(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "bob", ps[0].User.Username)
	assert.Equal(t, "alice", ps[1].User.Username)
	assert.Equal(t, 0.0, ps[0].CurrentValue)
}

func TestCreateChallengeWithParticipantsUnknownUserWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")

	_, err := s.CreateChallengeWithParticipants(ctx, "pair", 10, "days", time.Now(), time.Now(), []int64{alice, 42})
	assert.ErrorIs(t, err, ErrNotFound)

	challenges, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Empty(t, challenges)
	assert.Empty(t, s.participants)

	// the failed call did not use up an id
	assert.Equal(t, int64(1), mustChallenge(t, s, "next", 10))
}

func TestCreateChallengeWithParticipantsCancelledContext(t *testing.T) {
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateChallengeWithParticipants(ctx, "late", 10, "days", time.Now(), time.Now(), []int64{alice})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.challenges)
	assert.Empty(t, s.participants)
}
