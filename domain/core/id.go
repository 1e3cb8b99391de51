package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunID identifies one comparison run. Every output of a run carries it.
type RunID string

// NewRunID returns a time-ordered UUIDv7, so run IDs sort by creation time
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

// ParseRunID accepts any UUID form and normalizes it to the canonical hyphenated one
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid run ID %q: %w", s, err)
	}
	return RunID(id.String()), nil
}

func (id RunID) String() string { return string(id) }

// DeploymentID names a model deployment as it appears in trial records,
// e.g. "openai/gpt-4o"
type DeploymentID string

func ParseDeploymentID(s string) (DeploymentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("deployment ID cannot be empty")
	}
	return DeploymentID(s), nil
}

func (id DeploymentID) String() string { return string(id) }
