package handlers

import "github.com/gorilla/mux"

// RegisterAPIRoutes mounts every challenge tracker route on api, which is expected to
// be the /api subrouter.
func RegisterAPIRoutes(api *mux.Router, challenges *ChallengeHandler, progress *ProgressHandler, leaderboards *LeaderboardHandler, users *UserHandler) {
	api.HandleFunc("/challenges", challenges.GetChallenges).Methods("GET")
	api.HandleFunc("/challenges", challenges.CreateChallenge).Methods("POST")
	api.HandleFunc("/challenges/{id}", challenges.GetChallenge).Methods("GET")
	api.HandleFunc("/challenges/{id}/status", challenges.UpdateChallengeStatus).Methods("PATCH")
	api.HandleFunc("/challenges/{id}/join", challenges.JoinChallenge).Methods("POST")
	api.HandleFunc("/challenges/{id}/participants", challenges.GetParticipants).Methods("GET")
	api.HandleFunc("/challenges/{id}/invite", challenges.GetInvite).Methods("GET")
	api.HandleFunc("/challenges/{id}/leaderboard", leaderboards.GetChallengeLeaderboard).Methods("GET")

	api.HandleFunc("/progress", progress.AddProgress).Methods("POST")
	api.HandleFunc("/participants/{id}/progress", progress.GetProgressEntries).Methods("GET")

	api.HandleFunc("/leaderboard", leaderboards.GetLeaderboard).Methods("GET")

	api.HandleFunc("/users", users.GetUsers).Methods("GET")
	api.HandleFunc("/users", users.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", users.GetUser).Methods("GET")
}
