package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account in the Unfreeze system. The mission engine
// only reads/writes category, agent_name, current_mission, previous_missions
// and score; everything else belongs to the account layer.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string             `bson:"email" json:"email"`
	HashedPassword   string             `bson:"hashed_password" json:"-"`
	AgentName        string             `bson:"agent_name" json:"agent_name"`
	Inputs           []string           `bson:"inputs,omitempty" json:"inputs,omitempty"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	Score            int64              `bson:"score" json:"score"`
	CurrentMission   *Assignment        `bson:"current_mission,omitempty" json:"current_mission,omitempty"`
	PreviousMissions []string           `bson:"previous_missions" json:"previous_missions"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	AgentName string             `json:"agent_name"`
	Score     int64              `json:"score"`
}
