package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	"github.com/kailas-cloud/curalink/internal/normalize"
)

// Service runs console searches: validate, build, execute, normalize.
// Errors from the archive propagate unchanged in kind; nothing is retried.
type Service struct {
	archive Archive
}

// New creates a search service.
func New(archive Archive) *Service {
	return &Service{archive: archive}
}

// Patients searches patients.
func (s *Service) Patients(ctx context.Context, c criteria.Patient) (record.Page[record.Patient], error) {
	if err := c.Validate(); err != nil {
		return record.Page[record.Patient]{}, err
	}
	raw, err := s.archive.Get(ctx, criteria.Query{
		Service:  c.Service,
		Resource: criteria.ResourcePatients,
		Params:   c.Params(),
	})
	if err != nil {
		return record.Page[record.Patient]{}, fmt.Errorf("search patients: %w", err)
	}
	return page(normalize.Patients(raw.Body), raw), nil
}

// PatientStudies lists the studies of one patient, filtered by c.
func (s *Service) PatientStudies(
	ctx context.Context, patientID string, c criteria.Study,
) (record.Page[record.Study], error) {
	if patientID == "" {
		return record.Page[record.Study]{}, fmt.Errorf("%w: patient id is required", domain.ErrInvalidCriteria)
	}
	if err := c.Validate(); err != nil {
		return record.Page[record.Study]{}, err
	}
	raw, err := s.archive.Get(ctx, criteria.Query{
		Service:  c.Service,
		Resource: criteria.PatientStudies(patientID),
		Params:   c.Params(),
	})
	if err != nil {
		return record.Page[record.Study]{}, fmt.Errorf("list studies of patient %s: %w", patientID, err)
	}
	return page(normalize.Studies(raw.Body), raw), nil
}

// Studies searches studies.
func (s *Service) Studies(ctx context.Context, c criteria.Study) (record.Page[record.Study], error) {
	if err := c.Validate(); err != nil {
		return record.Page[record.Study]{}, err
	}
	raw, err := s.archive.Get(ctx, criteria.Query{
		Service:  c.Service,
		Resource: criteria.ResourceStudies,
		Params:   c.Params(),
	})
	if err != nil {
		return record.Page[record.Study]{}, fmt.Errorf("search studies: %w", err)
	}
	return page(normalize.Studies(raw.Body), raw), nil
}

// Series searches series.
func (s *Service) Series(ctx context.Context, c criteria.Series) (record.Page[record.Series], error) {
	if err := c.Validate(); err != nil {
		return record.Page[record.Series]{}, err
	}
	raw, err := s.archive.Get(ctx, criteria.Query{
		Service:  c.Service,
		Resource: criteria.ResourceSeries,
		Params:   c.Params(),
	})
	if err != nil {
		return record.Page[record.Series]{}, fmt.Errorf("search series: %w", err)
	}
	return page(normalize.Series(raw.Body), raw), nil
}

// Worklist searches the modality worklist.
func (s *Service) Worklist(ctx context.Context, c criteria.Worklist) (record.Page[record.WorklistItem], error) {
	if err := c.Validate(); err != nil {
		return record.Page[record.WorklistItem]{}, err
	}
	raw, err := s.archive.Get(ctx, criteria.Query{
		Service:  c.Service,
		Resource: criteria.ResourceMWL,
		Params:   c.Params(),
	})
	if err != nil {
		return record.Page[record.WorklistItem]{}, fmt.Errorf("search worklist: %w", err)
	}
	return page(normalize.Worklist(raw.Body), raw), nil
}

func page[T any](items []T, raw domain.RawResult) record.Page[T] {
	return record.Page[T]{Items: items, Total: raw.TotalCount}
}
