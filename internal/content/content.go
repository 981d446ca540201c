package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/models"
)

// Content holds the static mission tables. Loaded once at startup and passed
// to the services that need it; never mutated afterwards.
type Content struct {
	// Locations and MissionNames are parallel tables: the generator picks one
	// index and uses the riddle and the operation name at that index together.
	Locations    []Location
	MissionNames []string
	Actions      []string
	// SecretPool is the word pool secret tokens are sampled from, without
	// replacement, per mission.
	SecretPool []models.Secret
	// AgentWords feed the "Agent <Word> <Word>" alias assigned at registration.
	AgentWords []string
}

// Location pairs a real-world spot with the riddle that points to it.
type Location struct {
	Name   string `json:"location"`
	Riddle string `json:"riddle"`
}

// Load reads the content tables from dir and validates them.
func Load(dir string) (*Content, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "locations.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read locations: %v", err)
	}

	var locations []Location
	if err := json.Unmarshal(raw, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse locations: %v", err)
	}

	names, err := readLines(filepath.Join(dir, "operations.txt"))
	if err != nil {
		return nil, err
	}
	actions, err := readLines(filepath.Join(dir, "actions.txt"))
	if err != nil {
		return nil, err
	}
	secretWords, err := readLines(filepath.Join(dir, "secrets.txt"))
	if err != nil {
		return nil, err
	}
	agentWords, err := readLines(filepath.Join(dir, "names.txt"))
	if err != nil {
		return nil, err
	}

	secrets := make([]models.Secret, 0, len(secretWords))
	for _, w := range secretWords {
		secrets = append(secrets, models.Secret(w))
	}

	c := &Content{
		Locations:    locations,
		MissionNames: names,
		Actions:      actions,
		SecretPool:   secrets,
		AgentWords:   agentWords,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"locations": len(c.Locations),
		"actions":   len(c.Actions),
		"secrets":   len(c.SecretPool),
	}).Info("Mission content tables loaded")

	return c, nil
}

// Validate checks the table invariants the generator relies on.
func (c *Content) Validate() error {
	if len(c.Locations) == 0 {
		return fmt.Errorf("locations table is empty")
	}
	// The riddle table and the name table are indexed together.
	if len(c.Locations) != len(c.MissionNames) {
		return fmt.Errorf("locations (%d) and operations (%d) tables must be the same length",
			len(c.Locations), len(c.MissionNames))
	}
	if len(c.Actions) == 0 {
		return fmt.Errorf("actions table is empty")
	}
	if len(c.SecretPool) == 0 {
		return fmt.Errorf("secret pool is empty")
	}
	if len(c.AgentWords) < 2 {
		return fmt.Errorf("agent name table needs at least 2 entries")
	}
	seen := make(map[models.Secret]struct{}, len(c.SecretPool))
	for _, s := range c.SecretPool {
		n := s.Normalize()
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate secret %q in pool", s)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", filepath.Base(path), err)
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
