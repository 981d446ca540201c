package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/config"
	"github.com/unfreeze-app/unfreeze-backend/internal/services"
	jwtutil "github.com/unfreeze-app/unfreeze-backend/pkg/jwt"
	"github.com/unfreeze-app/unfreeze-backend/pkg/middleware"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), body.Email, body.Password)
	if err != nil {
		log.WithError(err).Error("Failed to register user")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(createdUser)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.AgentName, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")

	response := map[string]interface{}{
		"token": token,
		"user":  user,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetUserHandler handles fetching a user by ID.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestedUserID := vars["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to GetUserHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if requestedUserID != claims.UserID {
		log.WithFields(log.Fields{
			"requestedUserID": requestedUserID,
			"loggedInUserID":  claims.UserID,
		}).Warn("Forbidden access attempt")
		http.Error(w, "Forbidden: You can only access your own profile", http.StatusForbidden)
		return
	}

	user, err := h.Service.GetUser(r.Context(), requestedUserID)
	if err != nil {
		log.WithField("userID", requestedUserID).Warn("User not found")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// AddInputsHandler appends profile inputs and refreshes the caller's category
// through the classification service.
func (h *UserHandler) AddInputsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Inputs []string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode inputs request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AddInputs(r.Context(), claims.UserID, body.Inputs)
	if err != nil {
		log.WithError(err).Error("Failed to add inputs")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Inputs added successfully",
		"total_inputs": len(user.Inputs),
		"category":     user.Category,
	})
}
