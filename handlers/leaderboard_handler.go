package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/leaderboard"
	"challengeTrackerAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GET /api/leaderboard?challengeId=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("challengeId")
	if raw == "" {
		h.respond(w, r, nil)
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}
	h.respond(w, r, &id)
}

// GET /api/challenges/{id}/leaderboard
func (h *LeaderboardHandler) GetChallengeLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}
	h.respond(w, r, &id)
}

func (h *LeaderboardHandler) respond(w http.ResponseWriter, r *http.Request, challengeID *int64) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		board *leaderboard.Leaderboard
		err   error
	)
	if challengeID != nil {
		board, err = h.leaderboardService.ForChallenge(ctx, *challengeID)
	} else {
		board, err = h.leaderboardService.Global(ctx)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithServiceError(w, r, "GetLeaderboard", err, "Failed to build leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
