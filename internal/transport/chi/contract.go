package chi

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	domusage "github.com/kailas-cloud/curalink/internal/domain/usage"
	archiveconfuc "github.com/kailas-cloud/curalink/internal/usecase/archiveconf"
	assistantuc "github.com/kailas-cloud/curalink/internal/usecase/assistant"
	dashboarduc "github.com/kailas-cloud/curalink/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/curalink/internal/usecase/health"
)

// Archives lists the configured archive backends.
type Archives interface {
	Archives() []domain.ArchiveInfo
}

// Search runs the console searches.
type Search interface {
	Patients(ctx context.Context, c criteria.Patient) (record.Page[record.Patient], error)
	PatientStudies(ctx context.Context, patientID string, c criteria.Study) (record.Page[record.Study], error)
	Studies(ctx context.Context, c criteria.Study) (record.Page[record.Study], error)
	Series(ctx context.Context, c criteria.Series) (record.Page[record.Series], error)
	Worklist(ctx context.Context, c criteria.Worklist) (record.Page[record.WorklistItem], error)
}

// Institutions lists hospitals derived from the archive.
type Institutions interface {
	List(ctx context.Context, service string) ([]record.Institution, error)
	Get(ctx context.Context, service string, id int) (record.Institution, error)
}

// Dashboard aggregates archive statistics.
type Dashboard interface {
	Network(ctx context.Context, service string) (dashboarduc.Stats, error)
	Hospital(ctx context.Context, service, hospitalID string) (dashboarduc.Stats, error)
}

// Assistant answers quick and natural-language searches.
type Assistant interface {
	QuickSearch(ctx context.Context, service, q string) (assistantuc.QuickResult, error)
	Ask(ctx context.Context, q assistantuc.Question) (assistantuc.Answer, error)
}

// ArchiveConfig proxies read-only archive configuration.
type ArchiveConfig interface {
	List(ctx context.Context, service string, kind archiveconfuc.Kind) (json.RawMessage, error)
	Get(ctx context.Context, service string, kind archiveconfuc.Kind, name string) (json.RawMessage, error)
}

// Usage reports assistant token consumption.
type Usage interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Health reports component health.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}
