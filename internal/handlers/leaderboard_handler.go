package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/services"
)

// LeaderboardHandler handles HTTP requests for the leaderboard.
type LeaderboardHandler struct {
	Service *services.LeaderboardService
}

// NewLeaderboardHandler creates a new instance of LeaderboardHandler.
func NewLeaderboardHandler(service *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{Service: service}
}

// GetTopHandler returns the top-10 leaderboard.
func (h *LeaderboardHandler) GetTopHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Top(r.Context(), 10)
	if err != nil {
		log.WithError(err).Error("Failed to fetch leaderboard")
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// GetPlacementHandler returns a user's rank.
func (h *LeaderboardHandler) GetPlacementHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["id"]

	placement, err := h.Service.Placement(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to compute placement")
		http.Error(w, "Failed to compute placement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(placement)
}
