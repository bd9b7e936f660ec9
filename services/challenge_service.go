package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"challengeTrackerAPI/internal/invite"
	"challengeTrackerAPI/internal/metrics"
	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/participant"
)

type ChallengeService struct {
	store         store.Store
	inviteBaseURL string

	// joinMu keeps the membership check and insert of Join together.
	joinMu sync.Mutex
}

func NewChallengeService(s store.Store, inviteBaseURL string) *ChallengeService {
	return &ChallengeService{
		store:         s,
		inviteBaseURL: inviteBaseURL,
	}
}

// List returns every challenge with its participants, split into active and completed.
func (s *ChallengeService) List(ctx context.Context) (*challenge.Partition, error) {
	challenges, err := s.store.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	byChallenge := make(map[int64][]participant.WithUser, len(challenges))
	for _, p := range participants {
		byChallenge[p.ChallengeID] = append(byChallenge[p.ChallengeID], p)
	}

	joined := make([]challenge.WithParticipants, 0, len(challenges))
	for _, c := range challenges {
		ps := byChallenge[c.ID]
		if ps == nil {
			ps = []participant.WithUser{}
		}
		joined = append(joined, challenge.WithParticipants{Challenge: *c, Participants: ps})
	}

	partition := PartitionByStatus(joined)
	return &partition, nil
}

func (s *ChallengeService) Get(ctx context.Context, id int64) (*challenge.WithParticipants, error) {
	c, err := s.store.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipantsForChallenge(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return &challenge.WithParticipants{Challenge: *c, Participants: participants}, nil
}

// Create validates req, then creates the challenge and enrolls every distinct user
// listed in req.Participants in a single store call. Unknown users are reported as a
// validation error before anything is written.
func (s *ChallengeService) Create(ctx context.Context, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Unit = strings.TrimSpace(req.Unit)

	var extra []FieldError

	start, startOK := parseDate(req.StartDate)
	if req.StartDate != "" && !startOK {
		extra = append(extra, FieldError{Field: "startDate", Message: "must be an ISO date"})
	}
	end, endOK := parseDate(req.EndDate)
	if req.EndDate != "" && !endOK {
		extra = append(extra, FieldError{Field: "endDate", Message: "must be an ISO date"})
	}
	if startOK && endOK && end.Before(start) {
		extra = append(extra, FieldError{Field: "endDate", Message: "must not be before startDate"})
	}

	userIDs := make([]int64, 0, len(req.Participants))
	seen := make(map[int64]bool, len(req.Participants))
	for _, id := range req.Participants {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.store.GetUser(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				extra = append(extra, FieldError{Field: "participants", Message: fmt.Sprintf("user %d not found", id)})
				continue
			}
			return nil, err
		}
		userIDs = append(userIDs, id)
	}

	if err := validateRequest(req, "Invalid challenge data", extra...); err != nil {
		return nil, err
	}

	c, err := s.store.CreateChallengeWithParticipants(ctx, req.Title, req.TargetValue, req.Unit, start, end, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	metrics.ChallengeCreated()
	for range userIDs {
		metrics.ParticipantJoined()
	}

	log.Printf("ChallengeService: created challenge %d %q with %d participants", c.ID, c.Title, len(userIDs))
	return c, nil
}

func (s *ChallengeService) SetStatus(ctx context.Context, id int64, completed bool) (*challenge.Challenge, error) {
	c, err := s.store.SetChallengeCompletion(ctx, id, completed)
	if err != nil {
		return nil, err
	}
	metrics.StatusChanged(completed)
	log.Printf("ChallengeService: challenge %d completed=%v", id, completed)
	return c, nil
}

// Join enrolls a user into a challenge. A second join by the same user fails with
// ErrAlreadyJoined.
func (s *ChallengeService) Join(ctx context.Context, challengeID int64, req *challenge.JoinRequest) (*participant.Participant, error) {
	if err := validateRequest(req, "Invalid join request"); err != nil {
		return nil, err
	}

	s.joinMu.Lock()
	defer s.joinMu.Unlock()

	_, err := s.store.FindParticipant(ctx, req.UserID, challengeID)
	if err == nil {
		return nil, ErrAlreadyJoined
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p, err := s.store.AddParticipant(ctx, req.UserID, challengeID)
	if err != nil {
		return nil, err
	}
	metrics.ParticipantJoined()

	log.Printf("ChallengeService: user %d joined challenge %d as participant %d", req.UserID, challengeID, p.ID)
	return p, nil
}

func (s *ChallengeService) Participants(ctx context.Context, challengeID int64) ([]participant.WithUser, error) {
	return s.store.ListParticipantsForChallenge(ctx, challengeID)
}

func (s *ChallengeService) Invite(ctx context.Context, challengeID int64) (*invite.Invite, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}
	return invite.New(s.inviteBaseURL, challengeID)
}
