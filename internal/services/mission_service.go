package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/content"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MissionTTL bounds how long a generated mission is considered current. It is
// informational and never gates claims, which use the per-user claim window.
const MissionTTL = 600 * time.Second

// GenerateReport summarizes one generation epoch.
type GenerateReport struct {
	Epoch   int64             `json:"epoch"`
	Created []string          `json:"created"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}

// MissionService runs the epoch cycle: reset all prior mission state, cluster
// users by category and create one active mission per qualifying cluster.
type MissionService struct {
	users    UserDirectory
	missions MissionStore
	clusters *ClusterService
	content  *content.Content
}

// NewMissionService creates a new instance of MissionService.
func NewMissionService(users UserDirectory, missions MissionStore, clusters *ClusterService, tables *content.Content) *MissionService {
	return &MissionService{
		users:    users,
		missions: missions,
		clusters: clusters,
		content:  tables,
	}
}

// GenerateMissions runs one full epoch. The reset phase must succeed as a
// whole or the epoch is aborted (the next tick retries it); mission creation
// failures are isolated per cluster.
func (s *MissionService) GenerateMissions(ctx context.Context) (*GenerateReport, error) {
	epoch, err := s.missions.NextEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	deactivated, err := s.missions.DeactivateAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	cleared, err := s.users.ClearAllAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	logrus.WithFields(logrus.Fields{
		"epoch":       epoch,
		"deactivated": deactivated,
		"cleared":     cleared,
	}).Info("Epoch reset completed")

	clusters, err := s.clusters.ClusterByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	report := &GenerateReport{
		Epoch:   epoch,
		Created: []string{},
		Skipped: []string{},
		Failed:  map[string]string{},
	}

	for category, members := range clusters {
		if len(members) < 2 {
			report.Skipped = append(report.Skipped, category)
			continue
		}

		if err := s.generateForCluster(ctx, epoch, category, members); err != nil {
			logrus.WithFields(logrus.Fields{
				"epoch":    epoch,
				"category": category,
				"error":    err,
			}).Error("Mission generation failed for cluster")
			report.Failed[category] = err.Error()
			continue
		}
		report.Created = append(report.Created, category)
	}

	logrus.WithFields(logrus.Fields{
		"epoch":   epoch,
		"created": len(report.Created),
		"skipped": len(report.Skipped),
		"failed":  len(report.Failed),
	}).Info("Mission generation completed")

	return report, nil
}

func (s *MissionService) generateForCluster(ctx context.Context, epoch int64, category string, members []primitive.ObjectID) error {
	// The riddle and the operation name come from the same index so they stay
	// mutually consistent; the action is drawn independently.
	idx := rand.Intn(len(s.content.Locations))
	now := time.Now()

	mission := &models.Mission{
		ID:           uuid.NewString(),
		Epoch:        epoch,
		Category:     category,
		Participants: members,
		Status:       models.MissionStatusActive,
		Riddle:       s.content.Locations[idx].Riddle,
		Action:       s.content.Actions[rand.Intn(len(s.content.Actions))],
		MissionName:  s.content.MissionNames[idx],
		Expiration:   now.Add(MissionTTL),
		CreatedAt:    now,
	}

	secrets, err := sampleSecrets(s.content.SecretPool, len(members))
	if err != nil {
		return err
	}

	if err := s.missions.CreateMission(ctx, mission); err != nil {
		return err
	}

	for i, userID := range members {
		assignment := &models.Assignment{
			MissionID:   mission.ID,
			Epoch:       epoch,
			Riddle:      mission.Riddle,
			Action:      mission.Action,
			MissionName: mission.MissionName,
			SecretToken: secrets[i],
			AssignedAt:  now,
		}
		if err := s.users.AssignMission(ctx, userID, assignment); err != nil {
			return fmt.Errorf("failed to assign mission to participant %s: %v", userID.Hex(), err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"missionID":    mission.ID,
		"category":     category,
		"participants": len(members),
		"missionName":  mission.MissionName,
	}).Info("Mission created for cluster")

	return nil
}

// sampleSecrets draws n pairwise distinct secrets from the pool without
// replacement. Fails loudly when the pool cannot cover the cluster.
func sampleSecrets(pool []models.Secret, n int) ([]models.Secret, error) {
	if n > len(pool) {
		return nil, fmt.Errorf("%w: need %d secrets, pool has %d", ErrPoolExhausted, n, len(pool))
	}
	secrets := make([]models.Secret, 0, n)
	for _, j := range rand.Perm(len(pool))[:n] {
		secrets = append(secrets, pool[j])
	}
	return secrets, nil
}
