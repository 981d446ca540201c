package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles database operations related to users. It is the
// concrete user directory the mission engine talks to through the service
// layer interfaces.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.PreviousMissions == nil {
		user.PreviousMissions = []string{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}

	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil without error when no
// user matches.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %v", err)
	}
	return &user, nil
}

// GetUserByAgentName retrieves a user by their agent alias.
func (r *UserRepository) GetUserByAgentName(ctx context.Context, agentName string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"agent_name": agentName}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by agent name: %v", err)
	}
	return &user, nil
}

// GetAllUsers fetches every user record.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

// UpdateUser applies a partial $set update to a user document.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (int64, error) {
	update["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return 0, fmt.Errorf("failed to update user: %v", err)
	}
	return result.ModifiedCount, nil
}

// AssignMission writes the user's current mission assignment.
func (r *UserRepository) AssignMission(ctx context.Context, id primitive.ObjectID, assignment *models.Assignment) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"current_mission": assignment,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to assign mission to user %s: %v", id.Hex(), err)
	}
	return nil
}

// CompleteMission atomically clears the user's current mission and appends the
// mission name to their history, but only while the user still holds the given
// mission. A zero modified count means another claim or an epoch reset got
// there first.
func (r *UserRepository) CompleteMission(ctx context.Context, id primitive.ObjectID, missionID, missionName string) (int64, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "current_mission.mission_id": missionID},
		bson.M{
			"$unset": bson.M{"current_mission": ""},
			"$push":  bson.M{"previous_missions": missionName},
			"$inc":   bson.M{"score": 1},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":    id.Hex(),
			"missionID": missionID,
			"error":     err,
		}).Error("Failed to complete mission for user")
		return 0, fmt.Errorf("failed to complete mission: %v", err)
	}
	return result.ModifiedCount, nil
}

// ClearAllAssignments removes current_mission from every user. Part of the
// epoch reset sweep; safe to rerun.
func (r *UserRepository) ClearAllAssignments(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"current_mission": bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{"current_mission": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear assignments: %v", err)
	}
	return result.ModifiedCount, nil
}

// TopByScore returns the highest scoring users for the leaderboard.
func (r *UserRepository) TopByScore(ctx context.Context, limit int64) ([]*models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"agent_name": 1, "score": 1, "previous_missions": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// CountScoreAbove counts users with a strictly higher score.
func (r *UserRepository) CountScoreAbove(ctx context.Context, score int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"score": bson.M{"$gt": score}})
	if err != nil {
		return 0, fmt.Errorf("failed to count users by score: %v", err)
	}
	return count, nil
}
