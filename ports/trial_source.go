package ports

import (
	"context"

	"bais/domain/trial"
)

// TrialSource yields the trial records of one input file. Implementations
// read only the file they were constructed with.
type TrialSource interface {
	ReadTrials(ctx context.Context) (*trial.Batch, error)
}
