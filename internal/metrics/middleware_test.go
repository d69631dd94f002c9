package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testLabels = RouteLabels{
	ServiceParam: "webAppService",
	Default:      "DCM4CHEE",
	Archives:     []string{"DCM4CHEE", "AS_RECEIVED"},
	FanoutHeader: "X-Archive-Requests",
}

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware(testLabels))
	r.Route("/api", func(r chi.Router) {
		r.Get("/patients", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Archive-Requests", "3")
			_, _ = w.Write([]byte("[]"))
		})
		r.Get("/patients/{id}/studies", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/hospitals/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	})
	return r
}

func serve(r http.Handler, method, target string) {
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, target, http.NoBody))
}

func TestMiddleware_ArchiveLabel(t *testing.T) {
	r := newRouter()

	tests := []struct {
		target  string
		archive string
	}{
		{"/api/patients", "DCM4CHEE"},
		{"/api/patients?webAppService=AS_RECEIVED", "AS_RECEIVED"},
		{"/api/patients?webAppService=ORTHANC", "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			c := HTTPRequestsTotal.WithLabelValues("GET", "/api/patients", tc.archive, "200")
			before := testutil.ToFloat64(c)
			serve(r, "GET", tc.target)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("requests_total{archive=%q} grew by %f, want 1", tc.archive, got)
			}
		})
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := newRouter()

	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/patients/{id}/studies", "DCM4CHEE", "200")
	before := testutil.ToFloat64(c)
	for _, id := range []string{"P1", "P2"} {
		serve(r, "GET", "/api/patients/"+id+"/studies")
	}
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("expected both requests under the route pattern, got %f", got)
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	r := newRouter()

	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/hospitals/{id}", "DCM4CHEE", "404")
	before := testutil.ToFloat64(c)
	serve(r, "GET", "/api/hospitals/9")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("expected one 404 sample, got %f", got)
	}
}

func TestMiddleware_ArchiveFanout(t *testing.T) {
	r := newRouter()
	serve(r, "GET", "/api/patients")

	if n := testutil.CollectAndCount(HTTPArchiveFanout); n == 0 {
		t.Error("expected fan-out observations for /api/patients")
	}
	if n := testutil.CollectAndCount(HTTPRequestDuration); n == 0 {
		t.Error("expected duration observations")
	}
}

func TestRouteLabels_NoServiceParam(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/patients?webAppService=X", http.NoBody)
	if got := (RouteLabels{}).archive(req); got != "" {
		t.Errorf("archive = %q, want empty", got)
	}
}

func TestArchiveMetrics_Labels(t *testing.T) {
	ArchiveRequestsTotal.WithLabelValues("DCM4CHEE", "patients", "success").Inc()
	ArchiveErrorsTotal.WithLabelValues("AS_RECEIVED", "http").Inc()

	if v := testutil.ToFloat64(ArchiveRequestsTotal.WithLabelValues("DCM4CHEE", "patients", "success")); v < 1 {
		t.Errorf("archive_requests_total = %f", v)
	}
	if v := testutil.ToFloat64(ArchiveErrorsTotal.WithLabelValues("AS_RECEIVED", "http")); v < 1 {
		t.Errorf("archive_errors_total = %f", v)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterArchiveMetrics()
	RegisterArchiveMetrics()
	RegisterAssistantMetrics()
	RegisterAssistantMetrics()
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
}
