package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardService ranks users by completed-mission score.
type LeaderboardService struct {
	repo ScoreStore
}

// NewLeaderboardService creates a new instance of LeaderboardService.
func NewLeaderboardService(repo ScoreStore) *LeaderboardService {
	return &LeaderboardService{repo: repo}
}

// Top returns the highest scoring users.
func (s *LeaderboardService) Top(ctx context.Context, limit int64) ([]*PlacementEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	users, err := s.repo.TopByScore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top users: %v", err)
	}

	entries := make([]*PlacementEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, &PlacementEntry{
			UserID:            u.ID.Hex(),
			AgentName:         u.AgentName,
			Score:             u.Score,
			CompletedMissions: len(u.PreviousMissions),
		})
	}
	return entries, nil
}

// Placement returns the user's 1-based rank: one plus the number of users with
// a strictly higher score.
func (s *LeaderboardService) Placement(ctx context.Context, id string) (*Placement, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	above, err := s.repo.CountScoreAbove(ctx, user.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to compute placement: %v", err)
	}

	return &Placement{UserID: id, Placement: above + 1, Score: user.Score}, nil
}

// PlacementEntry is one leaderboard row.
type PlacementEntry struct {
	UserID            string `json:"user_id"`
	AgentName         string `json:"agent_name"`
	Score             int64  `json:"score"`
	CompletedMissions int    `json:"completed_missions"`
}

// Placement is a single user's rank.
type Placement struct {
	UserID    string `json:"user_id"`
	Placement int64  `json:"placement"`
	Score     int64  `json:"score"`
}
