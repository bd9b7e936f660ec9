package services

import (
	"sort"

	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/internal/types/leaderboard"
	"challengeTrackerAPI/internal/types/participant"
	"challengeTrackerAPI/utils"
)

// PartitionByStatus splits challenges on IsCompleted, keeping input order in both buckets.
func PartitionByStatus(challenges []challenge.WithParticipants) challenge.Partition {
	result := challenge.Partition{
		Active:    make([]challenge.WithParticipants, 0),
		Completed: make([]challenge.WithParticipants, 0),
	}
	for _, c := range challenges {
		if c.IsCompleted {
			result.Completed = append(result.Completed, c)
		} else {
			result.Active = append(result.Active, c)
		}
	}
	return result
}

// BuildLeaderboard ranks users by their average completion percentage over the
// challenges they participate in. targets maps challenge id to target value; a
// participant whose challenge is missing from targets is ignored. When scope is set
// only participants of that challenge count. Ties keep first-seen order.
func BuildLeaderboard(participants []participant.WithUser, targets map[int64]float64, scope *int64) []*leaderboard.LeaderboardEntry {
	byUser := make(map[int64]*leaderboard.LeaderboardEntry)
	entries := make([]*leaderboard.LeaderboardEntry, 0)

	for _, p := range participants {
		if scope != nil && p.ChallengeID != *scope {
			continue
		}
		target, ok := targets[p.ChallengeID]
		if !ok {
			continue
		}

		entry, seen := byUser[p.UserID]
		if !seen {
			entry = &leaderboard.LeaderboardEntry{User: p.User}
			byUser[p.UserID] = entry
			entries = append(entries, entry)
		}
		entry.TotalProgress += utils.ProgressPercentage(p.CurrentValue, target)
		entry.ChallengeCount++
		entry.AverageProgress = entry.TotalProgress / float64(entry.ChallengeCount)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageProgress > entries[j].AverageProgress
	})
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries
}
