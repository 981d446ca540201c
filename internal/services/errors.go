package services

import (
	"errors"
	"fmt"
)

// Claim and generation failure reasons. Handlers map these onto HTTP
// responses; nothing in the claim path is ever swallowed silently.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNoActiveMission   = errors.New("no active mission for user")
	ErrWindowExpired     = errors.New("claim window expired")
	ErrMissionNotFound   = errors.New("mission not found")
	ErrIncompleteSecrets = errors.New("submitted secrets are incomplete or extraneous")
	ErrPoolExhausted     = errors.New("secret pool smaller than cluster")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// IncorrectSecretError identifies which agent's secret failed verification.
// The whole claim is rejected; there is no partial credit.
type IncorrectSecretError struct {
	Agent string
}

func (e *IncorrectSecretError) Error() string {
	return fmt.Sprintf("incorrect secret for agent %q", e.Agent)
}
