package services

import (
	"context"

	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory is the subset of user storage the mission engine depends on.
// Implemented by repository.UserRepository; tests use an in-memory fake.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByAgentName(ctx context.Context, agentName string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (int64, error)
	AssignMission(ctx context.Context, id primitive.ObjectID, assignment *models.Assignment) error
	CompleteMission(ctx context.Context, id primitive.ObjectID, missionID, missionName string) (int64, error)
	ClearAllAssignments(ctx context.Context) (int64, error)
}

// MissionStore is the mission persistence surface the engine depends on.
type MissionStore interface {
	CreateMission(ctx context.Context, mission *models.Mission) error
	GetMissionByID(ctx context.Context, missionID string) (*models.Mission, error)
	DeactivateAll(ctx context.Context) (int64, error)
	NextEpoch(ctx context.Context) (int64, error)
}

// ScoreStore is the leaderboard query surface.
type ScoreStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	TopByScore(ctx context.Context, limit int64) ([]*models.User, error)
	CountScoreAbove(ctx context.Context, score int64) (int64, error)
}
