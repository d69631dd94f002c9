// Package chi is the HTTP surface of the gateway: routing, parameter binding,
// error mapping and the response headers the console reads.
package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	domusage "github.com/kailas-cloud/curalink/internal/domain/usage"
	archiveconfuc "github.com/kailas-cloud/curalink/internal/usecase/archiveconf"
	assistantuc "github.com/kailas-cloud/curalink/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/curalink/internal/usecase/health"
)

// Response headers.
const (
	HeaderTotalCount      = "X-Total-Count"
	HeaderArchiveRequests = "X-Archive-Requests"
)

// maxAskBody caps the smart search request body.
const maxAskBody = 1 << 20

// Services bundles the use cases behind the routes.
type Services struct {
	Archives      Archives
	Search        Search
	Institutions  Institutions
	Dashboard     Dashboard
	Assistant     Assistant
	ArchiveConfig ArchiveConfig
	Usage         Usage
	Health        Health
}

// Server serves the console API.
type Server struct {
	archives      Archives
	search        Search
	institutions  Institutions
	dashboard     Dashboard
	assistant     Assistant
	archiveConfig ArchiveConfig
	usage         Usage
	health        Health
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		archives:      svc.Archives,
		search:        svc.Search,
		institutions:  svc.Institutions,
		dashboard:     svc.Dashboard,
		assistant:     svc.Assistant,
		archiveConfig: svc.ArchiveConfig,
		usage:         svc.Usage,
		health:        svc.Health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/archives", s.ListArchives)

		r.Get("/patients", s.SearchPatients)
		r.Get("/patients/{id}/studies", s.PatientStudies)
		r.Get("/studies", s.SearchStudies)
		r.Get("/series", s.SearchSeries)
		r.Get("/mwl", s.SearchWorklist)

		r.Get("/hospitals", s.ListHospitals)
		r.Get("/hospitals/{id}", s.GetHospital)
		r.Get("/dashboard", s.NetworkDashboard)
		r.Get("/dashboard/hospital/{id}", s.HospitalDashboard)

		r.Get("/quick-search", s.QuickSearch)
		r.Post("/smart-search", s.SmartSearch)
		r.Get("/assistant/usage", s.AssistantUsage)

		for _, kind := range archiveconfuc.Kinds {
			r.Get("/"+string(kind), s.listConfig(kind))
			r.Get("/"+string(kind)+"/{name}", s.getConfig(kind))
		}
	})
}

// ListArchives handles GET /api/archives.
func (s *Server) ListArchives(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.archives.Archives())
}

// SearchPatients handles GET /api/patients.
func (s *Server) SearchPatients(w http.ResponseWriter, r *http.Request) {
	c, err := patientCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	page, err := s.search.Patients(ctx, c)
	writePage(w, page, usage, err, s.handleDomainError)
}

// PatientStudies handles GET /api/patients/{id}/studies.
func (s *Server) PatientStudies(w http.ResponseWriter, r *http.Request) {
	c, err := studyCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	page, err := s.search.PatientStudies(ctx, chi.URLParam(r, "id"), c)
	writePage(w, page, usage, err, s.handleDomainError)
}

// SearchStudies handles GET /api/studies.
func (s *Server) SearchStudies(w http.ResponseWriter, r *http.Request) {
	c, err := studyCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	page, err := s.search.Studies(ctx, c)
	writePage(w, page, usage, err, s.handleDomainError)
}

// SearchSeries handles GET /api/series.
func (s *Server) SearchSeries(w http.ResponseWriter, r *http.Request) {
	c, err := seriesCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	page, err := s.search.Series(ctx, c)
	writePage(w, page, usage, err, s.handleDomainError)
}

// SearchWorklist handles GET /api/mwl.
func (s *Server) SearchWorklist(w http.ResponseWriter, r *http.Request) {
	c, err := worklistCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	page, err := s.search.Worklist(ctx, c)
	writePage(w, page, usage, err, s.handleDomainError)
}

// ListHospitals handles GET /api/hospitals.
func (s *Server) ListHospitals(w http.ResponseWriter, r *http.Request) {
	service, err := serviceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	items, err := s.institutions.List(ctx, service)
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetHospital handles GET /api/hospitals/{id}.
func (s *Server) GetHospital(w http.ResponseWriter, r *http.Request) {
	var id int
	if err := bindPath(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	service, err := serviceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	inst, err := s.institutions.Get(ctx, service, id)
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// NetworkDashboard handles GET /api/dashboard.
func (s *Server) NetworkDashboard(w http.ResponseWriter, r *http.Request) {
	service, err := serviceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	stats, err := s.dashboard.Network(ctx, service)
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HospitalDashboard handles GET /api/dashboard/hospital/{id}.
// A hospital id that matches no institution yields the network-wide figures.
func (s *Server) HospitalDashboard(w http.ResponseWriter, r *http.Request) {
	service, err := serviceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	stats, err := s.dashboard.Hospital(ctx, service, chi.URLParam(r, "id"))
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// QuickSearch handles GET /api/quick-search.
func (s *Server) QuickSearch(w http.ResponseWriter, r *http.Request) {
	var q, service string
	if err := bindQuery(r.URL.Query(), binding{"q", &q}, binding{ServiceParam, &service}); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	res, err := s.assistant.QuickSearch(ctx, service, q)
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SmartSearchRequest is the body of POST /api/smart-search.
type SmartSearchRequest struct {
	Question       string               `json:"question"`
	History        []domain.ChatMessage `json:"history"`
	ConversationID string               `json:"conversationId,omitempty"`
	WebAppService  string               `json:"webAppService,omitempty"`
}

// SmartSearch handles POST /api/smart-search.
func (s *Server) SmartSearch(w http.ResponseWriter, r *http.Request) {
	var req SmartSearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithArchiveUsage(r.Context())
	answer, err := s.assistant.Ask(ctx, assistantuc.Question{
		Question:       req.Question,
		History:        req.History,
		ConversationID: req.ConversationID,
		Service:        req.WebAppService,
	})
	setArchiveHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// AssistantUsage handles GET /api/assistant/usage.
func (s *Server) AssistantUsage(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := bindQuery(r.URL.Query(), binding{"period", &raw}); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

func (s *Server) listConfig(kind archiveconfuc.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service, err := serviceParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
		body, err := s.archiveConfig.List(r.Context(), service, kind)
		s.writeRaw(w, body, err)
	}
}

func (s *Server) getConfig(kind archiveconfuc.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service, err := serviceParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
		body, err := s.archiveConfig.Get(r.Context(), service, kind, chi.URLParam(r, "name"))
		s.writeRaw(w, body, err)
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, body json.RawMessage, err error) {
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   healthuc.Status                 `json:"status"`
	Checks   map[string]healthuc.CheckResult `json:"checks"`
	Archives []string                        `json:"archives"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:   report.Status,
		Checks:   report.Checks,
		Archives: report.Archives,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writePage[T any](
	w http.ResponseWriter,
	page record.Page[T],
	usage *domain.ArchiveUsage,
	err error,
	onError func(http.ResponseWriter, error),
) {
	setArchiveHeaders(w, usage)
	if err != nil {
		onError(w, err)
		return
	}
	if page.Total >= 0 {
		w.Header().Set(HeaderTotalCount, strconv.Itoa(page.Total))
	}
	items := page.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func setArchiveHeaders(w http.ResponseWriter, usage *domain.ArchiveUsage) {
	if usage != nil && usage.Requests() > 0 {
		w.Header().Set(HeaderArchiveRequests, strconv.Itoa(usage.Requests()))
	}
}

// Handler builds the full router for the server with the given middleware stack.
func (s *Server) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	s.Routes(r)
	return r
}
