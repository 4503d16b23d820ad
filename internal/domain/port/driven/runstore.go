package driven

import (
	"context"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// RunStore defines the driven port for the delivery ledger.
type RunStore interface {
	Record(ctx context.Context, run model.DeliveryRun) error
	// ListRecent returns up to limit runs, newest first. An empty repoFullName
	// matches every repository.
	ListRecent(ctx context.Context, repoFullName string, limit int) ([]model.DeliveryRun, error)
}
