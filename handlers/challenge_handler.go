package handlers

import (
	"context"
	"errors"
	"net/http"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/challenge"
	"challengeTrackerAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// GET /api/challenges
func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	partition, err := h.challengeService.List(ctx)
	if err != nil {
		respondWithServiceError(w, r, "GetChallenges", err, "Failed to fetch challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, partition)
}

// GET /api/challenges/{id}
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	c, err := h.challengeService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithServiceError(w, r, "GetChallenge", err, "Failed to fetch challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// POST /api/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req challenge.CreateChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err, "Invalid challenge data")
		return
	}

	c, err := h.challengeService.Create(ctx, &req)
	if err != nil {
		respondWithServiceError(w, r, "CreateChallenge", err, "Failed to create challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

// PATCH /api/challenges/{id}/status
func (h *ChallengeHandler) UpdateChallengeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	var req challenge.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil || req.IsCompleted == nil {
		respondWithError(w, http.StatusBadRequest, "isCompleted must be a boolean")
		return
	}

	c, err := h.challengeService.SetStatus(ctx, id, *req.IsCompleted)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithServiceError(w, r, "UpdateChallengeStatus", err, "Failed to update challenge status")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// POST /api/challenges/{id}/join
func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	var req challenge.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err, "Invalid request body")
		return
	}

	p, err := h.challengeService.Join(ctx, id, &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge or user not found")
			return
		}
		respondWithServiceError(w, r, "JoinChallenge", err, "Failed to join challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

// GET /api/challenges/{id}/participants
func (h *ChallengeHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	participants, err := h.challengeService.Participants(ctx, id)
	if err != nil {
		respondWithServiceError(w, r, "GetParticipants", err, "Failed to fetch participants")
		return
	}

	respondWithJSON(w, http.StatusOK, participants)
}

// GET /api/challenges/{id}/invite
func (h *ChallengeHandler) GetInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	inv, err := h.challengeService.Invite(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithServiceError(w, r, "GetInvite", err, "Failed to generate invite")
		return
	}

	respondWithJSON(w, http.StatusOK, inv)
}
