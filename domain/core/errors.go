package core

import (
	"errors"
	"fmt"
)

var (
	ErrDeploymentNotFound = errors.New("deployment not found")

	// Per-record rejections; readers count these instead of failing
	ErrUnknownCondition = errors.New("unknown condition")
	ErrNoValue          = errors.New("no numeric response value")

	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// NewInsufficientDataError reports a group that fell below the minimum size
func NewInsufficientDataError(group string, have, want int) error {
	return fmt.Errorf("%w: %s has %d observations, need %d", ErrInsufficientData, group, have, want)
}
