package assistant

import (
	"context"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
)

// Archive executes queries and configuration reads against the archives.
type Archive interface {
	Get(ctx context.Context, q criteria.Query) (domain.RawResult, error)
	GetConfig(ctx context.Context, service, path string, params criteria.Params) (domain.RawResult, error)
}

// Institutions lists derived institutions.
type Institutions interface {
	List(ctx context.Context, service string) ([]record.Institution, error)
}

// Conversations persists assistant turns by conversation id.
type Conversations interface {
	Load(ctx context.Context, id string) ([]domain.ChatMessage, error)
	Save(ctx context.Context, id string, history []domain.ChatMessage) error
}
