package institution

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	"github.com/kailas-cloud/curalink/internal/domain/record"
)

const (
	// DefaultTTL is how long a derived institution list is served from memory.
	DefaultTTL = 5 * time.Minute
	// PageSize is the archive page size used while scanning series and studies.
	PageSize = 1000
	// maxPages caps a single scan at 200k records.
	maxPages = 200
)

var (
	seriesFields = dicom.IncludeFields(
		tag.InstitutionName, tag.InstitutionAddress, tag.InstitutionalDepartmentName, tag.Modality,
		tag.StudyInstanceUID, tag.PatientID, tag.SeriesDate, tag.SeriesTime,
	)
	studyFields = dicom.IncludeFields(
		tag.InstitutionName, tag.InstitutionAddress, tag.InstitutionalDepartmentName, tag.ModalitiesInStudy,
		tag.StudyInstanceUID, tag.PatientID, tag.StudyDate,
	)
)

type entry struct {
	items     []record.Institution
	expiresAt time.Time
}

// Service derives the institution list from archive contents and caches it per archive.
type Service struct {
	archive    Archive
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]entry
	group singleflight.Group
}

// New creates an institution service. A non-positive ttl selects DefaultTTL.
// cacheTotal (labels: result) can be nil.
func New(archive Archive, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		archive:    archive,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
		cache:      map[string]entry{},
	}
}

// List returns the institutions of an archive. Concurrent misses for the
// same archive share one scan; an empty service shares the default archive's entry.
func (s *Service) List(ctx context.Context, service string) ([]record.Institution, error) {
	if service == "" {
		service = s.archive.Default()
	}
	if items, ok := s.cached(service); ok {
		s.count("hit")
		return items, nil
	}
	s.count("miss")

	v, err, _ := s.group.Do(service, func() (any, error) {
		// The scan outlives any single waiting request.
		items, err := s.scan(context.WithoutCancel(ctx), service)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[service] = entry{items: items, expiresAt: s.now().Add(s.ttl)}
		s.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return slices.Clone(v.([]record.Institution)), nil
}

// Get returns one institution by its list position id.
func (s *Service) Get(ctx context.Context, service string, id int) (record.Institution, error) {
	items, err := s.List(ctx, service)
	if err != nil {
		return record.Institution{}, err
	}
	for _, inst := range items {
		if inst.ID == id {
			return inst, nil
		}
	}
	return record.Institution{}, fmt.Errorf("institution %d: %w", id, domain.ErrNotFound)
}

func (s *Service) cached(service string) ([]record.Institution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[service]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return slices.Clone(e.items), true
}

func (s *Service) count(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) scan(ctx context.Context, service string) ([]record.Institution, error) {
	start := time.Now()
	var series, studies []dicom.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = s.fetchAll(gctx, service, criteria.ResourceSeries, seriesFields)
		return err
	})
	g.Go(func() error {
		var err error
		studies, err = s.fetchAll(gctx, service, criteria.ResourceStudies, studyFields)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := Build(series, studies)
	s.logger.Info("Institutions derived",
		zap.String("archive", service),
		zap.Int("institutions", len(items)),
		zap.Int("series", len(series)),
		zap.Int("studies", len(studies)),
		zap.Duration("duration", time.Since(start)),
	)
	return items, nil
}

// fetchAll pages through a resource until a short page is returned.
func (s *Service) fetchAll(ctx context.Context, service, resource, fields string) ([]dicom.Record, error) {
	var all []dicom.Record
	for page := 0; page < maxPages; page++ {
		var p criteria.Params
		p.Add("limit", strconv.Itoa(PageSize))
		p.Add("offset", strconv.Itoa(page*PageSize))
		p.Add("includefield", fields)

		raw, err := s.archive.Get(ctx, criteria.Query{Service: service, Resource: resource, Params: p})
		if err != nil {
			return nil, fmt.Errorf("scan %s at offset %d: %w", resource, page*PageSize, err)
		}
		recs, _ := dicom.ParseArray(raw.Body)
		all = append(all, recs...)
		if len(recs) < PageSize {
			return all, nil
		}
	}
	s.logger.Warn("Institution scan truncated",
		zap.String("archive", service),
		zap.String("resource", resource),
		zap.Int("records", len(all)),
	)
	return all, nil
}
