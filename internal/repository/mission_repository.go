package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const epochCounterID = "mission_epoch"

// MissionRepository handles database operations related to missions and the
// epoch counter.
type MissionRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMissionRepository creates a new instance of MissionRepository.
func NewMissionRepository(db *mongo.Database) *MissionRepository {
	return &MissionRepository{
		collection: db.Collection("missions"),
		counters:   db.Collection("counters"),
	}
}

// CreateMission inserts a new mission.
func (r *MissionRepository) CreateMission(ctx context.Context, mission *models.Mission) error {
	_, err := r.collection.InsertOne(ctx, mission)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"missionID": mission.ID,
			"category":  mission.Category,
			"error":     err,
		}).Error("Failed to insert mission")
		return fmt.Errorf("failed to insert mission: %v", err)
	}
	return nil
}

// GetMissionByID retrieves a mission by its id. Returns nil without error when
// no mission matches.
func (r *MissionRepository) GetMissionByID(ctx context.Context, missionID string) (*models.Mission, error) {
	var mission models.Mission
	err := r.collection.FindOne(ctx, bson.M{"_id": missionID}).Decode(&mission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find mission: %v", err)
	}
	return &mission, nil
}

// DeactivateAll flips every active mission to inactive. Part of the epoch
// reset sweep; safe to rerun.
func (r *MissionRepository) DeactivateAll(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"status": models.MissionStatusActive},
		bson.M{"$set": bson.M{"status": models.MissionStatusInactive}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate missions: %v", err)
	}
	return result.ModifiedCount, nil
}

// NextEpoch atomically increments and returns the epoch counter.
func (r *MissionRepository) NextEpoch(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": epochCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to advance epoch counter: %v", err)
	}
	return doc.Seq, nil
}
