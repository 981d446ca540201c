package services

import (
	"context"
	"sync"

	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory UserDirectory + MissionStore for tests.
type fakeStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	order    []primitive.ObjectID
	missions map[string]*models.Mission
	epoch    int64

	nextEpochErr     error
	clearErr         error
	createMissionErr func(m *models.Mission) error
	completeOverride func(id primitive.ObjectID, missionID, missionName string) (int64, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[primitive.ObjectID]*models.User),
		missions: make(map[string]*models.Mission),
	}
}

func (f *fakeStore) addUser(agentName, category string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{
		ID:               primitive.NewObjectID(),
		AgentName:        agentName,
		Category:         category,
		PreviousMissions: []string{},
	}
	f.users[u.ID] = u
	f.order = append(f.order, u.ID)
	return u
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if f.users[id].Email == email {
			return f.users[id], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserByAgentName(_ context.Context, agentName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if f.users[id].AgentName == agentName {
			return f.users[id], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetAllUsers(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(f.order))
	for _, id := range f.order {
		users = append(users, f.users[id])
	}
	return users, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	f.order = append(f.order, user.ID)
	return user, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id primitive.ObjectID, update map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	if v, ok := update["inputs"].([]string); ok {
		u.Inputs = v
	}
	if v, ok := update["category"].(string); ok {
		u.Category = v
	}
	return 1, nil
}

func (f *fakeStore) AssignMission(_ context.Context, id primitive.ObjectID, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil
	}
	u.CurrentMission = assignment
	return nil
}

func (f *fakeStore) CompleteMission(_ context.Context, id primitive.ObjectID, missionID, missionName string) (int64, error) {
	if f.completeOverride != nil {
		return f.completeOverride(id, missionID, missionName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.CurrentMission == nil || u.CurrentMission.MissionID != missionID {
		return 0, nil
	}
	u.CurrentMission = nil
	u.PreviousMissions = append(u.PreviousMissions, missionName)
	u.Score++
	return 1, nil
}

func (f *fakeStore) ClearAllAssignments(_ context.Context) (int64, error) {
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.CurrentMission != nil {
			u.CurrentMission = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateMission(_ context.Context, mission *models.Mission) error {
	if f.createMissionErr != nil {
		if err := f.createMissionErr(mission); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missions[mission.ID] = mission
	return nil
}

func (f *fakeStore) GetMissionByID(_ context.Context, missionID string) (*models.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.missions[missionID], nil
}

func (f *fakeStore) DeactivateAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.missions {
		if m.Status == models.MissionStatusActive {
			m.Status = models.MissionStatusInactive
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) NextEpoch(_ context.Context) (int64, error) {
	if f.nextEpochErr != nil {
		return 0, f.nextEpochErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
	return f.epoch, nil
}

func (f *fakeStore) activeMissions() []*models.Mission {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*models.Mission
	for _, m := range f.missions {
		if m.Status == models.MissionStatusActive {
			active = append(active, m)
		}
	}
	return active
}
