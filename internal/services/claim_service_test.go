package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// claimFixture builds the cluster {A, B, C} with tokens fox/lamp/kite.
type claimFixture struct {
	store   *fakeStore
	svc     *ClaimService
	mission *models.Mission
	a, b, c *models.User
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	store := newFakeStore()
	a := store.addUser("Agent Falcon Onyx", "music")
	b := store.addUser("Agent Monarch Quill", "music")
	c := store.addUser("Agent Juniper Sable", "music")

	mission := &models.Mission{
		ID:           "mission-1",
		Epoch:        1,
		Category:     "music",
		Participants: []primitive.ObjectID{a.ID, b.ID, c.ID},
		Status:       models.MissionStatusActive,
		Riddle:       "riddle",
		Action:       "action",
		MissionName:  "Operation Centerstage",
		Expiration:   time.Now().Add(MissionTTL),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateMission(context.Background(), mission))

	for u, token := range map[*models.User]models.Secret{a: "fox", b: "lamp", c: "kite"} {
		u.CurrentMission = &models.Assignment{
			MissionID:   mission.ID,
			Epoch:       1,
			Riddle:      mission.Riddle,
			Action:      mission.Action,
			MissionName: mission.MissionName,
			SecretToken: token,
			AssignedAt:  time.Now(),
		}
	}

	return &claimFixture{
		store:   store,
		svc:     NewClaimService(store, store, ClaimWindow),
		mission: mission,
		a:       a,
		b:       b,
		c:       c,
	}
}

func TestClaimSuccess(t *testing.T) {
	f := newClaimFixture(t)

	result, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "kite",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "Operation Centerstage", result.MissionName)
	assert.False(t, result.Duplicate)

	// A's assignment is consumed and moved to history.
	assert.Nil(t, f.a.CurrentMission)
	assert.Equal(t, []string{"Operation Centerstage"}, f.a.PreviousMissions)
	assert.Equal(t, int64(1), f.a.Score)

	// B and C are untouched by A's claim.
	require.NotNil(t, f.b.CurrentMission)
	require.NotNil(t, f.c.CurrentMission)
	assert.Empty(t, f.b.PreviousMissions)
}

func TestClaimCaseInsensitiveSecrets(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"agent monarch quill": "  LAMP ",
		"AGENT JUNIPER SABLE": "Kite",
	})
	require.NoError(t, err)
	assert.Nil(t, f.a.CurrentMission)
}

func TestClaimMissingParticipantRejected(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
	})
	assert.ErrorIs(t, err, ErrIncompleteSecrets)
	assert.NotNil(t, f.a.CurrentMission, "rejected claim must not consume the assignment")
}

func TestClaimExtraneousAgentRejected(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "kite",
		"Agent Nobody":        "fox",
	})
	assert.ErrorIs(t, err, ErrIncompleteSecrets)
}

func TestClaimWrongSecretRejectedAllOrNothing(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "wrong",
	})
	var incorrect *IncorrectSecretError
	require.ErrorAs(t, err, &incorrect)
	assert.Equal(t, "Agent Juniper Sable", incorrect.Agent)
	assert.NotNil(t, f.a.CurrentMission)
}

func TestClaimWindowExpired(t *testing.T) {
	f := newClaimFixture(t)
	f.a.CurrentMission.AssignedAt = time.Now().Add(-301 * time.Second)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "kite",
	})
	assert.ErrorIs(t, err, ErrWindowExpired)
}

func TestClaimWindowIsPerUser(t *testing.T) {
	f := newClaimFixture(t)
	// The mission-level expiration has passed but B's own window has not.
	f.mission.Expiration = time.Now().Add(-time.Minute)

	_, err := f.svc.Claim(context.Background(), f.b.ID.Hex(), map[string]string{
		"Agent Falcon Onyx":   "fox",
		"Agent Juniper Sable": "kite",
	})
	require.NoError(t, err)
}

func TestClaimUserNotFound(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.svc.Claim(context.Background(), primitive.NewObjectID().Hex(), map[string]string{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.Claim(context.Background(), "not-a-hex-id", map[string]string{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClaimNoActiveMission(t *testing.T) {
	f := newClaimFixture(t)
	f.a.CurrentMission = nil

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{})
	assert.ErrorIs(t, err, ErrNoActiveMission)
}

func TestClaimMissionNotFound(t *testing.T) {
	f := newClaimFixture(t)
	delete(f.store.missions, f.mission.ID)

	_, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "kite",
	})
	assert.ErrorIs(t, err, ErrMissionNotFound)
}

func TestClaimSkipsParticipantsAlreadyClaimed(t *testing.T) {
	f := newClaimFixture(t)
	// B already claimed; their assignment is gone. A only needs C's secret.
	f.b.CurrentMission = nil

	result, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Juniper Sable": "kite",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
}

func TestClaimDuplicateIsBenign(t *testing.T) {
	f := newClaimFixture(t)
	// The store reports no change, as if a racing claim or epoch reset cleared
	// the assignment between verification and mutation.
	f.store.completeOverride = func(primitive.ObjectID, string, string) (int64, error) {
		return 0, nil
	}

	result, err := f.svc.Claim(context.Background(), f.a.ID.Hex(), map[string]string{
		"Agent Monarch Quill": "lamp",
		"Agent Juniper Sable": "kite",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.True(t, result.Duplicate)
}

func TestClaimAfterGenerationEndToEnd(t *testing.T) {
	store := newFakeStore()
	store.addUser("Agent One", "music")
	store.addUser("Agent Two", "music")

	gen := newMissionService(store, 10)
	_, err := gen.GenerateMissions(context.Background())
	require.NoError(t, err)

	users, err := store.GetAllUsers(context.Background())
	require.NoError(t, err)
	claimant, other := users[0], users[1]
	require.NotNil(t, claimant.CurrentMission)

	svc := NewClaimService(store, store, ClaimWindow)
	result, err := svc.Claim(context.Background(), claimant.ID.Hex(), map[string]string{
		other.AgentName: string(other.CurrentMission.SecretToken),
	})
	require.NoError(t, err)
	assert.Equal(t, claimant.PreviousMissions[0], result.MissionName)
}
