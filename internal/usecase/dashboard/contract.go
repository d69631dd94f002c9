package dashboard

import (
	"context"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
)

// Archive executes built queries against the configured archives.
type Archive interface {
	Get(ctx context.Context, q criteria.Query) (domain.RawResult, error)
}

// Institutions resolves a hospital id to its derived institution.
type Institutions interface {
	Get(ctx context.Context, service string, id int) (record.Institution, error)
}
