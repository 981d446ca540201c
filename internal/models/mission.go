package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MissionStatusActive   = "active"
	MissionStatusInactive = "inactive"
)

// Secret is a mission secret token. All comparisons go through Normalize so
// that "  Fox " and "fox" are the same secret.
type Secret string

// Normalize lowercases and trims the secret.
func (s Secret) Normalize() Secret {
	return Secret(strings.ToLower(strings.TrimSpace(string(s))))
}

// Equal reports whether two secrets match after normalization.
func (s Secret) Equal(other Secret) bool {
	return s.Normalize() == other.Normalize()
}

// Mission is a time-boxed group challenge tying together a cluster of
// same-category users. Immutable after creation except for Status.
type Mission struct {
	ID           string               `bson:"_id" json:"mission_id"`
	Epoch        int64                `bson:"epoch" json:"epoch"`
	Category     string               `bson:"category" json:"category"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Status       string               `bson:"status" json:"status"`
	Riddle       string               `bson:"riddle" json:"riddle"`
	Action       string               `bson:"action" json:"action"`
	MissionName  string               `bson:"mission_name" json:"mission_name"`
	Expiration   time.Time            `bson:"expiration" json:"expiration"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
}

// Assignment is the per-user embedded mission record. The riddle, action and
// mission name are denormalized from the Mission for fast per-user lookup.
// SecretToken is the value the *other* participants must present to claim.
type Assignment struct {
	MissionID   string    `bson:"mission_id" json:"mission_id"`
	Epoch       int64     `bson:"epoch" json:"epoch"`
	Riddle      string    `bson:"riddle" json:"riddle"`
	Action      string    `bson:"action" json:"action"`
	MissionName string    `bson:"mission_name" json:"mission_name"`
	SecretToken Secret    `bson:"secret_token" json:"secret_token"`
	AssignedAt  time.Time `bson:"assigned_at" json:"assigned_at"`
}
