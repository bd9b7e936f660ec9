package handlers

import (
	"context"
	"errors"
	"net/http"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/progress"
	"challengeTrackerAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// POST /api/progress
func (h *ProgressHandler) AddProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req progress.LogProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err, "Invalid progress data")
		return
	}

	result, err := h.progressService.Log(ctx, &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusBadRequest, "Participant not found")
			return
		}
		respondWithServiceError(w, r, "AddProgress", err, "Failed to add progress")
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GET /api/participants/{id}/progress
func (h *ProgressHandler) GetProgressEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid participant ID")
		return
	}

	entries, err := h.progressService.Entries(ctx, id)
	if err != nil {
		respondWithServiceError(w, r, "GetProgressEntries", err, "Failed to fetch progress entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
