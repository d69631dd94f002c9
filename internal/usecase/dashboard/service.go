// Package dashboard aggregates archive-wide and per-hospital statistics.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/dicom"
)

const studyWindow = "1000"

// Service builds dashboards.
type Service struct {
	archive      Archive
	institutions Institutions
	logger       *zap.Logger
}

// New creates a dashboard service. institutions can be nil; hospital dashboards
// then fall back to archive-wide data.
func New(archive Archive, institutions Institutions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{archive: archive, institutions: institutions, logger: logger}
}

// Network returns statistics over the whole archive.
func (s *Service) Network(ctx context.Context, service string) (Stats, error) {
	studies, patients, err := s.collect(ctx, service, "")
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(studies, patients), nil
}

// Hospital returns statistics for one institution. An unknown or non-numeric id
// yields archive-wide data, as does an institution with no matching studies.
func (s *Service) Hospital(ctx context.Context, service, hospitalID string) (Stats, error) {
	name := s.institutionName(ctx, service, hospitalID)

	studies, patients, err := s.collect(ctx, service, name)
	if err != nil {
		return Stats{}, err
	}
	if len(studies) == 0 && name != "" {
		studies, err = s.studies(ctx, service, "")
		if err != nil {
			return Stats{}, err
		}
	}

	st := Aggregate(studies, patients)
	st.HospitalID = hospitalID
	return st, nil
}

func (s *Service) institutionName(ctx context.Context, service, hospitalID string) string {
	if s.institutions == nil {
		return ""
	}
	id, err := strconv.Atoi(hospitalID)
	if err != nil {
		return ""
	}
	inst, err := s.institutions.Get(ctx, service, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Institution lookup failed, using archive-wide data",
				zap.String("hospital_id", hospitalID), zap.Error(err))
		}
		return ""
	}
	return inst.InstitutionName
}

// collect fetches the study window and the patient total concurrently.
// A failed patient count reads as 0.
func (s *Service) collect(ctx context.Context, service, institution string) ([]dicom.Record, int, error) {
	var (
		studies  []dicom.Record
		patients int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		studies, err = s.studies(gctx, service, institution)
		return err
	})
	g.Go(func() error {
		patients = s.patientTotal(gctx, service, institution)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return studies, patients, nil
}

// studies returns the latest studies, newest first. 404 reads as no studies.
func (s *Service) studies(ctx context.Context, service, institution string) ([]dicom.Record, error) {
	var p criteria.Params
	p.Add("limit", studyWindow)
	p.Add("orderby", "-StudyDate")
	if institution != "" {
		p.Add("InstitutionName", "*"+institution+"*")
	}
	raw, err := s.archive.Get(ctx, criteria.Query{Service: service, Resource: criteria.ResourceStudies, Params: p})
	if err != nil {
		var httpErr *domain.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("dashboard studies: %w", err)
	}
	recs, _ := dicom.ParseArray(raw.Body)
	return recs, nil
}

func (s *Service) patientTotal(ctx context.Context, service, institution string) int {
	var p criteria.Params
	p.Add("limit", "1")
	if institution != "" {
		p.Add("InstitutionName", "*"+institution+"*")
	}
	raw, err := s.archive.Get(ctx, criteria.Query{Service: service, Resource: criteria.ResourcePatients, Params: p})
	if err != nil {
		s.logger.Debug("Patient count unavailable", zap.String("archive", service), zap.Error(err))
		return 0
	}
	if raw.TotalCount > 0 {
		return raw.TotalCount
	}
	recs, _ := dicom.ParseArray(raw.Body)
	return len(recs)
}
