package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/services"
	"github.com/unfreeze-app/unfreeze-backend/pkg/middleware"
)

// MissionHandler handles HTTP requests related to missions.
type MissionHandler struct {
	MissionService *services.MissionService
	ClaimService   *services.ClaimService
	UserService    *services.UserService
}

// NewMissionHandler creates a new instance of MissionHandler.
func NewMissionHandler(missionService *services.MissionService, claimService *services.ClaimService, userService *services.UserService) *MissionHandler {
	return &MissionHandler{
		MissionService: missionService,
		ClaimService:   claimService,
		UserService:    userService,
	}
}

// GenerateMissionsHandler triggers a full generation epoch and returns the
// per-category report.
func (h *MissionHandler) GenerateMissionsHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("GenerateMissionsHandler called")

	report, err := h.MissionService.GenerateMissions(r.Context())
	if err != nil {
		log.WithError(err).Error("Manual mission generation failed")
		http.Error(w, "Mission generation failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// ClaimMissionHandler verifies the caller's completion attempt.
func (h *MissionHandler) ClaimMissionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Secrets map[string]string `json:"secrets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Invalid claim payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.ClaimService.Claim(r.Context(), claims.UserID, body.Secrets)
	if err != nil {
		writeClaimError(w, claims.UserID, err)
		return
	}

	response := map[string]interface{}{
		"status":       result.Status,
		"mission_name": result.MissionName,
	}
	if result.Duplicate {
		response["message"] = "Secrets matched but the assignment was already cleared"
	} else {
		response["message"] = "Mission claimed"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetCurrentMissionHandler returns the caller's current assignment, including
// their own secret token (the value they hand to other participants).
func (h *MissionHandler) GetCurrentMissionHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch user for current mission")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if user.CurrentMission == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"current_mission": nil})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"current_mission": user.CurrentMission})
}

// writeClaimError maps the claim error taxonomy onto HTTP responses. Every
// rejection carries a machine-readable reason.
func writeClaimError(w http.ResponseWriter, userID string, err error) {
	reason := "internal_error"
	status := http.StatusInternalServerError

	var incorrect *services.IncorrectSecretError
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		reason, status = "not_found", http.StatusNotFound
	case errors.Is(err, services.ErrNoActiveMission):
		reason, status = "no_active_mission", http.StatusBadRequest
	case errors.Is(err, services.ErrWindowExpired):
		reason, status = "window_expired", http.StatusBadRequest
	case errors.Is(err, services.ErrMissionNotFound):
		reason, status = "mission_not_found", http.StatusNotFound
	case errors.Is(err, services.ErrIncompleteSecrets):
		reason, status = "incomplete_or_extraneous", http.StatusBadRequest
	case errors.As(err, &incorrect):
		reason, status = "incorrect_secret", http.StatusBadRequest
	case errors.Is(err, services.ErrStoreUnavailable):
		reason, status = "store_unavailable", http.StatusServiceUnavailable
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"reason": reason,
		"error":  err,
	}).Warn("Claim rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "rejected",
		"reason": reason,
		"detail": err.Error(),
	})
}
