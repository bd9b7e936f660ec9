package services

import (
	"context"
	"fmt"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/leaderboard"
)

type LeaderboardService struct {
	store store.Store
}

func NewLeaderboardService(s store.Store) *LeaderboardService {
	return &LeaderboardService{store: s}
}

// Global ranks users across every challenge they take part in.
func (s *LeaderboardService) Global(ctx context.Context) (*leaderboard.Leaderboard, error) {
	return s.build(ctx, nil, "")
}

// ForChallenge ranks the participants of a single challenge.
func (s *LeaderboardService) ForChallenge(ctx context.Context, challengeID int64) (*leaderboard.Leaderboard, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, &c.ID, c.Title)
}

func (s *LeaderboardService) build(ctx context.Context, scope *int64, title string) (*leaderboard.Leaderboard, error) {
	challenges, err := s.store.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	targets := make(map[int64]float64, len(challenges))
	for _, c := range challenges {
		targets[c.ID] = c.TargetValue
	}

	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	entries := BuildLeaderboard(participants, targets, scope)
	return &leaderboard.Leaderboard{
		ChallengeID:    scope,
		ChallengeTitle: title,
		Entries:        entries,
		TotalUsers:     len(entries),
	}, nil
}
