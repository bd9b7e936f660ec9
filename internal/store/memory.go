package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/participant"
	"challengeTrackerAPI/internal/types/progress"
	"challengeTrackerAPI/internal/types/user"
)

// MemoryStore keeps everything in process memory. Ids are handed out sequentially per
// entity kind and never reused, so iterating 1..next-1 walks insertion order.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[int64]*user.User
	challenges   map[int64]*challenge.Challenge
	participants map[int64]*participant.Participant
	entries      map[int64]*progress.Entry

	participantsByChallenge map[int64][]int64
	entriesByParticipant    map[int64][]int64

	nextUserID        int64
	nextChallengeID   int64
	nextParticipantID int64
	nextEntryID       int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:                   make(map[int64]*user.User),
		challenges:              make(map[int64]*challenge.Challenge),
		participants:            make(map[int64]*participant.Participant),
		entries:                 make(map[int64]*progress.Entry),
		participantsByChallenge: make(map[int64][]int64),
		entriesByParticipant:    make(map[int64][]int64),
		nextUserID:              1,
		nextChallengeID:         1,
		nextParticipantID:       1,
		nextEntryID:             1,
		now:                     time.Now,
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, username, password, avatarColor string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &user.User{
		ID:          s.nextUserID,
		Username:    username,
		Password:    password,
		AvatarColor: avatarColor,
	}
	s.nextUserID++
	s.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := int64(1); id < s.nextUserID; id++ {
		if u, ok := s.users[id]; ok && u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *MemoryStore) ListUsers(ctx context.Context, limit int) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*user.User, 0, len(s.users))
	for id := int64(1); id < s.nextUserID; id++ {
		if limit > 0 && len(users) == limit {
			break
		}
		if u, ok := s.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

func (s *MemoryStore) CreateChallenge(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time) (*challenge.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.createChallenge(title, targetValue, unit, startDate, endDate)
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) CreateChallengeWithParticipants(ctx context.Context, title string, targetValue float64, unit string, startDate, endDate time.Time, userIDs []int64) (*challenge.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range userIDs {
		if _, ok := s.users[userID]; !ok {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
	}

	c := s.createChallenge(title, targetValue, unit, startDate, endDate)
	for _, userID := range userIDs {
		s.addParticipant(userID, c.ID)
	}

	cp := *c
	return &cp, nil
}

// createChallenge must be called with s.mu held for writing.
func (s *MemoryStore) createChallenge(title string, targetValue float64, unit string, startDate, endDate time.Time) *challenge.Challenge {
	c := &challenge.Challenge{
		ID:          s.nextChallengeID,
		Title:       title,
		TargetValue: targetValue,
		Unit:        unit,
		StartDate:   startDate,
		EndDate:     endDate,
		IsCompleted: false,
		CreatedAt:   s.now(),
	}
	s.nextChallengeID++
	s.challenges[c.ID] = c
	return c
}

func (s *MemoryStore) GetChallenge(ctx context.Context, id int64) (*challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	challenges := make([]*challenge.Challenge, 0, len(s.challenges))
	for id := int64(1); id < s.nextChallengeID; id++ {
		if c, ok := s.challenges[id]; ok {
			cp := *c
			challenges = append(challenges, &cp)
		}
	}
	return challenges, nil
}

func (s *MemoryStore) SetChallengeCompletion(ctx context.Context, id int64, completed bool) (*challenge.Challenge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %d: %w", id, ErrNotFound)
	}
	c.IsCompleted = completed

	cp := *c
	return &cp, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if _, ok := s.challenges[challengeID]; !ok {
		return nil, fmt.Errorf("challenge %d: %w", challengeID, ErrNotFound)
	}

	p := s.addParticipant(userID, challengeID)
	cp := *p
	return &cp, nil
}

// addParticipant must be called with s.mu held for writing, after both references
// have been checked.
func (s *MemoryStore) addParticipant(userID, challengeID int64) *participant.Participant {
	p := &participant.Participant{
		ID:           s.nextParticipantID,
		UserID:       userID,
		ChallengeID:  challengeID,
		CurrentValue: 0,
		LastUpdated:  s.now(),
	}
	s.nextParticipantID++
	s.participants[p.ID] = p
	s.participantsByChallenge[challengeID] = append(s.participantsByChallenge[challengeID], p.ID)
	return p
}

func (s *MemoryStore) GetParticipant(ctx context.Context, id int64) (*participant.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %d: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) FindParticipant(ctx context.Context, userID, challengeID int64) (*participant.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.participantsByChallenge[challengeID] {
		if p := s.participants[id]; p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("participant for user %d in challenge %d: %w", userID, challengeID, ErrNotFound)
}

func (s *MemoryStore) ListParticipantsForChallenge(ctx context.Context, challengeID int64) ([]participant.WithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.joinUsers(s.participantsByChallenge[challengeID])
}

func (s *MemoryStore) ListParticipants(ctx context.Context) ([]participant.WithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.participants))
	for id := int64(1); id < s.nextParticipantID; id++ {
		if _, ok := s.participants[id]; ok {
			ids = append(ids, id)
		}
	}
	return s.joinUsers(ids)
}

// joinUsers must be called with s.mu held.
func (s *MemoryStore) joinUsers(ids []int64) ([]participant.WithUser, error) {
	joined := make([]participant.WithUser, 0, len(ids))
	for _, id := range ids {
		p := s.participants[id]
		u, ok := s.users[p.UserID]
		if !ok {
			return nil, fmt.Errorf("participant %d references missing user %d: %w", p.ID, p.UserID, ErrInconsistent)
		}
		joined = append(joined, participant.WithUser{Participant: *p, User: *u})
	}
	return joined, nil
}

func (s *MemoryStore) AccumulateParticipantProgress(ctx context.Context, participantID int64, delta float64) (*participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.accumulate(participantID, delta)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// accumulate must be called with s.mu held for writing.
func (s *MemoryStore) accumulate(participantID int64, delta float64) (*participant.Participant, error) {
	p, ok := s.participants[participantID]
	if !ok {
		return nil, fmt.Errorf("participant %d: %w", participantID, ErrNotFound)
	}
	if err := checkTotal(participantID, p.CurrentValue, delta); err != nil {
		return nil, err
	}
	p.CurrentValue += delta
	p.LastUpdated = s.now()
	return p, nil
}

func (s *MemoryStore) AddProgressEntry(ctx context.Context, participantID int64, value float64, date time.Time, notes *string) (*progress.Entry, *participant.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.participants[participantID]
	if !ok {
		return nil, nil, fmt.Errorf("participant %d: %w", participantID, ErrNotFound)
	}
	if err := checkTotal(participantID, existing.CurrentValue, value); err != nil {
		return nil, nil, err
	}

	e := &progress.Entry{
		ID:            s.nextEntryID,
		ParticipantID: participantID,
		Value:         value,
		Date:          date,
		Notes:         copyNotes(notes),
		CreatedAt:     s.now(),
	}
	s.nextEntryID++
	s.entries[e.ID] = e
	s.entriesByParticipant[participantID] = append(s.entriesByParticipant[participantID], e.ID)

	p, err := s.accumulate(participantID, value)
	if err != nil {
		return nil, nil, err
	}

	entryCopy := *e
	entryCopy.Notes = copyNotes(e.Notes)
	participantCopy := *p
	return &entryCopy, &participantCopy, nil
}

func (s *MemoryStore) ListProgressEntries(ctx context.Context, participantID int64) ([]*progress.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.entriesByParticipant[participantID]
	entries := make([]*progress.Entry, 0, len(ids))
	for _, id := range ids {
		cp := *s.entries[id]
		cp.Notes = copyNotes(cp.Notes)
		entries = append(entries, &cp)
	}
	return entries, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func copyNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	n := *notes
	return &n
}
