package driven

import (
	"context"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// SubmissionArchive defines the driven port for durable submission records.
type SubmissionArchive interface {
	Store(ctx context.Context, record model.SubmissionRecord) error
	// List returns the newest records first, at most limit of them.
	List(ctx context.Context, limit int) ([]model.SubmissionRecord, error)
}
