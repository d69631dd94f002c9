// Package archive issues authenticated QIDO-RS and configuration requests
// against the configured DICOM archives.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	logpkg "github.com/kailas-cloud/curalink/internal/logger"
	"github.com/kailas-cloud/curalink/internal/metrics"
)

// DefaultTimeout bounds a single archive request when none is configured.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept in HTTPError.
const maxErrorBody = 2048

// Media types requested from the archive.
const (
	MediaDICOMJSON = "application/dicom+json"
	MediaJSON      = "application/json"
)

// Archive describes one configured backend.
type Archive struct {
	ID           string
	Description  string
	URL          string // scheme://host:port
	Path         string // QIDO-RS root, e.g. /dcm4chee-arc/aets/DCM4CHEE/rs
	ConfigPath   string // configuration root, e.g. /dcm4chee-arc; empty when unsupported
	AuthRequired bool
}

// Base returns the QIDO-RS root URL.
func (a Archive) Base() string {
	return strings.TrimRight(a.URL, "/") + a.Path
}

// Config holds the executor settings.
type Config struct {
	Archives   []Archive
	Default    string
	Timeout    time.Duration
	Tokens     domain.TokenSource
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Executor resolves a target archive, attaches credentials and performs GETs.
type Executor struct {
	archives   map[string]Archive
	order      []string
	defaultID  string
	timeout    time.Duration
	tokens     domain.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewExecutor validates the archive set and builds an executor.
func NewExecutor(cfg Config) (*Executor, error) {
	if len(cfg.Archives) == 0 {
		return nil, errors.New("at least one archive is required")
	}
	e := &Executor{
		archives:   make(map[string]Archive, len(cfg.Archives)),
		order:      make([]string, 0, len(cfg.Archives)),
		defaultID:  cfg.Default,
		timeout:    cfg.Timeout,
		tokens:     cfg.Tokens,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	for _, a := range cfg.Archives {
		if a.ID == "" || a.URL == "" {
			return nil, fmt.Errorf("archive %q: id and url are required", a.ID)
		}
		if _, dup := e.archives[a.ID]; dup {
			return nil, fmt.Errorf("archive %q configured twice", a.ID)
		}
		if a.AuthRequired && cfg.Tokens == nil {
			return nil, fmt.Errorf("archive %q requires auth but no token source is configured", a.ID)
		}
		e.archives[a.ID] = a
		e.order = append(e.order, a.ID)
	}
	if e.defaultID == "" {
		e.defaultID = e.order[0]
	}
	if _, ok := e.archives[e.defaultID]; !ok {
		return nil, fmt.Errorf("default archive %q is not configured", e.defaultID)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.httpClient == nil {
		e.httpClient = http.DefaultClient
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e, nil
}

// Archives lists configured archives in configuration order.
func (e *Executor) Archives() []domain.ArchiveInfo {
	out := make([]domain.ArchiveInfo, 0, len(e.order))
	for _, id := range e.order {
		a := e.archives[id]
		out = append(out, domain.ArchiveInfo{
			ID:          a.ID,
			Name:        a.ID,
			Description: a.Description,
			URL:         a.URL,
			Status:      "active",
		})
	}
	return out
}

// ArchiveIDs returns the configured archive ids in configuration order.
func (e *Executor) ArchiveIDs() []string {
	return append([]string(nil), e.order...)
}

// Default returns the id of the default archive.
func (e *Executor) Default() string { return e.defaultID }

// Resolve maps a service id to its archive. Empty selects the default.
func (e *Executor) Resolve(service string) (Archive, error) {
	if service == "" {
		service = e.defaultID
	}
	a, ok := e.archives[service]
	if !ok {
		return Archive{}, fmt.Errorf("%w: %s (available: %s)",
			domain.ErrUnknownArchive, service, strings.Join(e.order, ", "))
	}
	return a, nil
}

// Get queries a QIDO-RS resource. A 204 response yields an empty JSON array.
func (e *Executor) Get(ctx context.Context, q criteria.Query) (domain.RawResult, error) {
	a, err := e.Resolve(q.Service)
	if err != nil {
		return domain.RawResult{}, err
	}
	return e.do(ctx, a, buildURL(a.Base(), q.Resource, q.Params), q.Resource, MediaDICOMJSON)
}

// GetConfig reads a path under the archive's configuration root (devices, aes, hl7apps, modalities).
func (e *Executor) GetConfig(ctx context.Context, service, path string, params criteria.Params) (domain.RawResult, error) {
	a, err := e.Resolve(service)
	if err != nil {
		return domain.RawResult{}, err
	}
	if a.ConfigPath == "" {
		return domain.RawResult{}, fmt.Errorf("archive %s has no configuration root: %w", a.ID, domain.ErrNotFound)
	}
	root := strings.TrimRight(a.URL, "/") + a.ConfigPath
	return e.do(ctx, a, buildURL(root, path, params), path, MediaJSON)
}

func (e *Executor) do(ctx context.Context, a Archive, target, resource, accept string) (domain.RawResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	usage := domain.ArchiveUsageFromContext(ctx)
	label := metricResource(resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return domain.RawResult{}, fmt.Errorf("build archive request: %w", err)
	}
	req.Header.Set("Accept", accept)

	if a.AuthRequired {
		usage.AddTokenRequest()
		tok, err := e.tokens.Token(ctx)
		if err != nil {
			metrics.ArchiveErrorsTotal.WithLabelValues(a.ID, "auth").Inc()
			return domain.RawResult{}, fmt.Errorf("archive %s: %w", a.ID, err)
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}

	start := time.Now()
	usage.AddRequest()

	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.ArchiveRequestsTotal.WithLabelValues(a.ID, label, "error").Inc()
		metrics.ArchiveErrorsTotal.WithLabelValues(a.ID, "transport").Inc()
		return domain.RawResult{}, domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ArchiveRequestDuration.WithLabelValues(a.ID, label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ArchiveRequestsTotal.WithLabelValues(a.ID, label, "error").Inc()
		metrics.ArchiveErrorsTotal.WithLabelValues(a.ID, "transport").Inc()
		return domain.RawResult{}, domain.NewTransportError(err)
	}

	logpkg.FromContext(ctx, e.logger).Debug("Archive request",
		zap.String("archive", a.ID),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		metrics.ArchiveRequestsTotal.WithLabelValues(a.ID, label, "success").Inc()
		return domain.RawResult{Body: []byte("[]"), TotalCount: totalCount(resp.Header)}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.ArchiveRequestsTotal.WithLabelValues(a.ID, label, "error").Inc()
		metrics.ArchiveErrorsTotal.WithLabelValues(a.ID, "http").Inc()
		return domain.RawResult{}, domain.NewHTTPError(resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	metrics.ArchiveRequestsTotal.WithLabelValues(a.ID, label, "success").Inc()
	return domain.RawResult{Body: body, TotalCount: totalCount(resp.Header)}, nil
}

func buildURL(root, resource string, params criteria.Params) string {
	u := root
	if resource != "" {
		u += "/" + strings.TrimLeft(resource, "/")
	}
	if q := params.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func totalCount(h http.Header) int {
	v := h.Get("X-Total-Count")
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// metricResource collapses nested paths so ids never become label values.
func metricResource(resource string) string {
	if strings.HasPrefix(resource, criteria.ResourcePatients+"/") {
		return "patient_studies"
	}
	if i := strings.IndexByte(resource, '/'); i >= 0 {
		return resource[:i]
	}
	return resource
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
