package services

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/classify"
	"github.com/unfreeze-app/unfreeze-backend/internal/content"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// agentNameAttempts bounds the retries when a sampled alias is already taken.
const agentNameAttempts = 10

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo       UserDirectory
	classifier classify.Classifier
	content    *content.Content
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserDirectory, classifier classify.Classifier, tables *content.Content) *UserService {
	return &UserService{
		repo:       repo,
		classifier: classifier,
		content:    tables,
	}
}

// RegisterUser registers a new user, hashes their password and assigns them a
// unique agent alias from the name pool.
func (s *UserService) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if email == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("email and password are required")
	}

	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	existingUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %v", err)
	}
	if existingUser != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	agentName, err := s.assignAgentName(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:            email,
		HashedPassword:   string(hashedPwd),
		AgentName:        agentName,
		PreviousMissions: []string{},
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID":    createdUser.ID.Hex(),
		"agentName": createdUser.AgentName,
	}).Info("User registered successfully")

	return createdUser, nil
}

// assignAgentName samples "Agent <Word> <Word>" aliases until one is free.
func (s *UserService) assignAgentName(ctx context.Context) (string, error) {
	for attempt := 0; attempt < agentNameAttempts; attempt++ {
		picks := rand.Perm(len(s.content.AgentWords))[:2]
		alias := fmt.Sprintf("Agent %s %s", s.content.AgentWords[picks[0]], s.content.AgentWords[picks[1]])

		taken, err := s.repo.GetUserByAgentName(ctx, alias)
		if err != nil {
			return "", fmt.Errorf("failed to check agent name: %v", err)
		}
		if taken == nil {
			return alias, nil
		}
	}
	return "", fmt.Errorf("failed to find a free agent name after %d attempts", agentNameAttempts)
}

// AuthenticateUser verifies login credentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Password mismatch during login")
		return nil, fmt.Errorf("invalid email or password")
	}

	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
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
	return user, nil
}

// AddInputs appends free-text inputs to the user's profile and refreshes their
// category through the classification oracle. The oracle is a black box; its
// category id is stored verbatim.
func (s *UserService) AddInputs(ctx context.Context, id string, inputs []string) (*models.User, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("inputs are required")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Inputs = append(user.Inputs, inputs...)

	category, err := s.classifier.Classify(ctx, strings.Join(user.Inputs, " "))
	if err != nil {
		logrus.WithError(err).Error("Classification failed")
		return nil, fmt.Errorf("failed to classify inputs: %v", err)
	}

	update := map[string]interface{}{
		"inputs":   user.Inputs,
		"category": category,
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return nil, fmt.Errorf("failed to save inputs: %v", err)
	}

	user.Category = category
	user.UpdatedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"userID":   id,
		"category": category,
		"inputs":   len(user.Inputs),
	}).Info("User inputs added and category refreshed")

	return user, nil
}
