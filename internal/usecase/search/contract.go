package search

import (
	"context"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
)

// Archive executes built queries against the configured archives.
type Archive interface {
	Get(ctx context.Context, q criteria.Query) (domain.RawResult, error)
}
