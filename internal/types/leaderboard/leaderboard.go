package leaderboard

import "challengeTrackerAPI/internal/types/user"

type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	User            user.User `json:"user"`
	TotalProgress   float64   `json:"totalProgress"`
	ChallengeCount  int       `json:"challengeCount"`
	AverageProgress float64   `json:"averageProgress"`
}

type Leaderboard struct {
	ChallengeID    *int64              `json:"challengeId,omitempty"`
	ChallengeTitle string              `json:"challengeTitle,omitempty"`
	Entries        []*LeaderboardEntry `json:"entries"`
	TotalUsers     int                 `json:"totalUsers"`
}
