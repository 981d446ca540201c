package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClusterService groups active users by their externally assigned category.
type ClusterService struct {
	users UserDirectory
}

// NewClusterService creates a new instance of ClusterService.
func NewClusterService(users UserDirectory) *ClusterService {
	return &ClusterService{users: users}
}

// ClusterByCategory maps category -> participating user IDs. Users with no
// category are excluded. Deterministic given the same user set; an empty user
// set yields an empty map.
func (s *ClusterService) ClusterByCategory(ctx context.Context) (map[string][]primitive.ObjectID, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for clustering: %v", err)
	}

	clusters := make(map[string][]primitive.ObjectID)
	for _, user := range users {
		if user.Category == "" {
			continue
		}
		clusters[user.Category] = append(clusters[user.Category], user.ID)
	}

	logrus.WithField("clusters", len(clusters)).Info("Users clustered by category")
	return clusters, nil
}
