package archiveconf

import (
	"context"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
)

// Archive reads paths under an archive's configuration root.
type Archive interface {
	GetConfig(ctx context.Context, service, path string, params criteria.Params) (domain.RawResult, error)
}
