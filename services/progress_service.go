package services

import (
	"context"
	"errors"
	"log"

	"challengeTrackerAPI/internal/metrics"
	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/progress"
)

type ProgressService struct {
	store store.Store
}

func NewProgressService(s store.Store) *ProgressService {
	return &ProgressService{store: s}
}

// Log appends a progress entry and returns it with the participant's new running total.
func (s *ProgressService) Log(ctx context.Context, req *progress.LogProgressRequest) (*progress.LogProgressResponse, error) {
	var extra []FieldError
	date, ok := parseDate(req.Date)
	if req.Date != "" && !ok {
		extra = append(extra, FieldError{Field: "date", Message: "must be an ISO date"})
	}
	if err := validateRequest(req, "Invalid progress data", extra...); err != nil {
		return nil, err
	}

	entry, p, err := s.store.AddProgressEntry(ctx, req.ParticipantID, req.Value, date, req.Notes)
	if err != nil {
		if errors.Is(err, store.ErrOutOfRange) {
			return nil, &ValidationError{
				Message: "Invalid progress data",
				Fields:  []FieldError{{Field: "value", Message: "would push the participant total out of range"}},
			}
		}
		return nil, err
	}

	unit := "unknown"
	if c, err := s.store.GetChallenge(ctx, p.ChallengeID); err == nil {
		unit = c.Unit
	} else {
		log.Printf("ProgressService: challenge %d for participant %d: %v", p.ChallengeID, p.ID, err)
	}
	metrics.ProgressLogged(unit, entry.Value)

	return &progress.LogProgressResponse{Entry: entry, Participant: p}, nil
}

// Entries lists a participant's progress entries oldest first. Unknown participants
// have no entries.
func (s *ProgressService) Entries(ctx context.Context, participantID int64) ([]*progress.Entry, error) {
	return s.store.ListProgressEntries(ctx, participantID)
}
