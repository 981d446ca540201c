package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimWindow is how long a participant has to complete their assignment,
// measured from their own assigned_at. Independent of the mission expiration.
const ClaimWindow = 300 * time.Second

// ClaimResult is the outcome of a successful claim. Duplicate is set when the
// assignment was already cleared by a concurrent claim or an epoch reset; the
// claim itself was valid, so that case is still a success.
type ClaimResult struct {
	Status      string `json:"status"`
	MissionName string `json:"mission_name"`
	Duplicate   bool   `json:"duplicate,omitempty"`
}

// ClaimService validates mission completion attempts. A claim succeeds only
// when the submitted map covers exactly the other current participants and
// every secret matches; anything less rejects the whole claim.
type ClaimService struct {
	users    UserDirectory
	missions MissionStore
	window   time.Duration
}

// NewClaimService creates a new instance of ClaimService.
func NewClaimService(users UserDirectory, missions MissionStore, window time.Duration) *ClaimService {
	if window <= 0 {
		window = ClaimWindow
	}
	return &ClaimService{
		users:    users,
		missions: missions,
		window:   window,
	}
}

// Claim verifies userID's completion attempt against the secrets submitted
// for every other participant, keyed by agent name.
func (s *ClaimService) Claim(ctx context.Context, userID string, submitted map[string]string) (*ClaimResult, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id %q", ErrUserNotFound, userID)
	}

	user, err := s.users.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	assignment := user.CurrentMission
	if assignment == nil {
		return nil, ErrNoActiveMission
	}

	if time.Since(assignment.AssignedAt) > s.window {
		logrus.WithFields(logrus.Fields{
			"userID":    userID,
			"missionID": assignment.MissionID,
			"elapsed":   time.Since(assignment.AssignedAt).Seconds(),
		}).Warn("Claim attempted after window expired")
		return nil, ErrWindowExpired
	}

	mission, err := s.missions.GetMissionByID(ctx, assignment.MissionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if mission == nil {
		return nil, ErrMissionNotFound
	}

	required, err := s.requiredSecrets(ctx, mission, objID)
	if err != nil {
		return nil, err
	}

	if err := verifySecrets(required, submitted); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":    userID,
			"missionID": mission.ID,
			"error":     err,
		}).Warn("Claim rejected")
		return nil, err
	}

	modified, err := s.users.CompleteMission(ctx, objID, mission.ID, mission.MissionName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := &ClaimResult{
		Status:      "ok",
		MissionName: mission.MissionName,
	}
	if modified == 0 {
		// The secrets were right but the assignment was already gone. A
		// duplicate submission and a racing epoch reset look the same here,
		// so both are treated as benign.
		result.Duplicate = true
		logrus.WithFields(logrus.Fields{
			"userID":    userID,
			"missionID": mission.ID,
		}).Warn("Claim verified but assignment already cleared")
		return result, nil
	}

	logrus.WithFields(logrus.Fields{
		"userID":      userID,
		"missionID":   mission.ID,
		"missionName": mission.MissionName,
	}).Info("Mission claimed successfully")

	return result, nil
}

// requiredSecrets builds the agent -> secret map a claimant must reproduce:
// every other participant that still holds an assignment for this mission.
// Participants already claimed or reset away are skipped, not failed.
func (s *ClaimService) requiredSecrets(ctx context.Context, mission *models.Mission, claimant primitive.ObjectID) (map[string]models.Secret, error) {
	required := make(map[string]models.Secret)
	for _, pid := range mission.Participants {
		if pid == claimant {
			continue
		}
		participant, err := s.users.GetUserByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if participant == nil || participant.CurrentMission == nil {
			continue
		}
		if participant.CurrentMission.MissionID != mission.ID {
			continue
		}
		required[normalizeAgent(participant.AgentName)] = participant.CurrentMission.SecretToken
	}
	return required, nil
}

// verifySecrets is all-or-nothing: the submitted key set must equal the
// required key set exactly, and every secret must match case-insensitively.
func verifySecrets(required map[string]models.Secret, submitted map[string]string) error {
	if len(submitted) != len(required) {
		return ErrIncompleteSecrets
	}

	matched := make(map[string]struct{}, len(required))
	for agent, secret := range submitted {
		key := normalizeAgent(agent)
		want, ok := required[key]
		if !ok {
			return ErrIncompleteSecrets
		}
		if _, dup := matched[key]; dup {
			return ErrIncompleteSecrets
		}
		matched[key] = struct{}{}
		if !want.Equal(models.Secret(secret)) {
			return &IncorrectSecretError{Agent: agent}
		}
	}
	return nil
}

func normalizeAgent(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
