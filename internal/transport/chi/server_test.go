package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	domusage "github.com/kailas-cloud/curalink/internal/domain/usage"
	archiveconfuc "github.com/kailas-cloud/curalink/internal/usecase/archiveconf"
	assistantuc "github.com/kailas-cloud/curalink/internal/usecase/assistant"
	dashboarduc "github.com/kailas-cloud/curalink/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/curalink/internal/usecase/health"
)

// --- Mocks ---

type mockArchives struct {
	list []domain.ArchiveInfo
}

func (m *mockArchives) Archives() []domain.ArchiveInfo { return m.list }

type mockSearch struct {
	patients     record.Page[record.Patient]
	studies      record.Page[record.Study]
	err          error
	lastPatient  criteria.Patient
	lastStudy    criteria.Study
	lastSeries   criteria.Series
	lastWorklist criteria.Worklist
	lastPID      string
}

func (m *mockSearch) Patients(ctx context.Context, c criteria.Patient) (record.Page[record.Patient], error) {
	m.lastPatient = c
	domain.ArchiveUsageFromContext(ctx).AddRequest()
	return m.patients, m.err
}

func (m *mockSearch) PatientStudies(
	_ context.Context, patientID string, c criteria.Study,
) (record.Page[record.Study], error) {
	m.lastPID = patientID
	m.lastStudy = c
	return m.studies, m.err
}

func (m *mockSearch) Studies(_ context.Context, c criteria.Study) (record.Page[record.Study], error) {
	m.lastStudy = c
	return m.studies, m.err
}

func (m *mockSearch) Series(_ context.Context, c criteria.Series) (record.Page[record.Series], error) {
	m.lastSeries = c
	return record.Page[record.Series]{Total: -1}, m.err
}

func (m *mockSearch) Worklist(_ context.Context, c criteria.Worklist) (record.Page[record.WorklistItem], error) {
	m.lastWorklist = c
	return record.Page[record.WorklistItem]{Total: -1}, m.err
}

type mockInstitutions struct {
	list   []record.Institution
	err    error
	lastID int
}

func (m *mockInstitutions) List(_ context.Context, _ string) ([]record.Institution, error) {
	return m.list, m.err
}

func (m *mockInstitutions) Get(_ context.Context, _ string, id int) (record.Institution, error) {
	m.lastID = id
	for _, inst := range m.list {
		if inst.ID == id {
			return inst, nil
		}
	}
	return record.Institution{}, fmt.Errorf("institution %d: %w", id, domain.ErrNotFound)
}

type mockDashboard struct {
	stats        dashboarduc.Stats
	err          error
	lastHospital string
}

func (m *mockDashboard) Network(_ context.Context, _ string) (dashboarduc.Stats, error) {
	return m.stats, m.err
}

func (m *mockDashboard) Hospital(_ context.Context, _, hospitalID string) (dashboarduc.Stats, error) {
	m.lastHospital = hospitalID
	return m.stats, m.err
}

type mockAssistant struct {
	quick        assistantuc.QuickResult
	answer       assistantuc.Answer
	err          error
	lastQ        string
	lastService  string
	lastQuestion assistantuc.Question
}

func (m *mockAssistant) QuickSearch(_ context.Context, service, q string) (assistantuc.QuickResult, error) {
	m.lastQ = q
	m.lastService = service
	return m.quick, m.err
}

func (m *mockAssistant) Ask(_ context.Context, q assistantuc.Question) (assistantuc.Answer, error) {
	m.lastQuestion = q
	return m.answer, m.err
}

type mockConfig struct {
	body     json.RawMessage
	err      error
	lastKind archiveconfuc.Kind
	lastName string
}

func (m *mockConfig) List(_ context.Context, _ string, kind archiveconfuc.Kind) (json.RawMessage, error) {
	m.lastKind = kind
	return m.body, m.err
}

func (m *mockConfig) Get(
	_ context.Context, _ string, kind archiveconfuc.Kind, name string,
) (json.RawMessage, error) {
	m.lastKind = kind
	m.lastName = name
	return m.body, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mockUsage struct {
	period domusage.Period
}

func (m *mockUsage) GetReport(_ context.Context, p domusage.Period) domusage.Report {
	m.period = p
	return domusage.Report{Period: p, Provider: "openai", TokensUsed: 1500,
		Budget: domusage.Budget{TokensLimit: 10000, TokensRemaining: 8500}}
}

type fixture struct {
	search       *mockSearch
	institutions *mockInstitutions
	dashboard    *mockDashboard
	assistant    *mockAssistant
	config       *mockConfig
	usage        *mockUsage
	health       *mockHealth
	handler      http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		search:       &mockSearch{},
		institutions: &mockInstitutions{},
		dashboard:    &mockDashboard{},
		assistant:    &mockAssistant{},
		config:       &mockConfig{},
		usage:        &mockUsage{},
		health:       &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
	srv := NewServer(Services{
		Archives: &mockArchives{list: []domain.ArchiveInfo{
			{ID: "DCM4CHEE", Name: "DCM4CHEE", Description: "main", URL: "http://pacs:8080", Status: "active"},
		}},
		Search:        f.search,
		Institutions:  f.institutions,
		Dashboard:     f.dashboard,
		Assistant:     f.assistant,
		ArchiveConfig: f.config,
		Usage:         f.usage,
		Health:        f.health,
	}, nil)
	f.handler = srv.Handler(CORSMiddleware([]string{"http://localhost:5173"}))
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestSearchPatients_BindsFormFields(t *testing.T) {
	f := newFixture()
	f.search.patients = record.Page[record.Patient]{
		Items: []record.Patient{{ID: "1", Name: "John Smith"}, {ID: "2", Name: "Jane Smith"}},
		Total: 42,
	}

	rr := f.do(http.MethodGet,
		"/api/patients?patientFamilyName=Smith&fuzzyMatching=true&limitOfPatients=10"+
			"&patientSex=M&birthDate=1985-05-15&orderBy=-PatientName&onlyWithStudies=true&webAppService=AS_RECEIVED", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	c := f.search.lastPatient
	if c.FamilyName != "Smith" || !c.Fuzzy || c.Limit != 10 || c.Sex != "M" {
		t.Errorf("unexpected criteria: %+v", c)
	}
	if c.BirthDate != "1985-05-15" || c.OrderBy != "-PatientName" || !c.OnlyWithStudies || c.Merged {
		t.Errorf("unexpected criteria: %+v", c)
	}
	if c.Service != "AS_RECEIVED" {
		t.Errorf("service = %q", c.Service)
	}

	if got := rr.Header().Get(HeaderTotalCount); got != "42" {
		t.Errorf("X-Total-Count = %q", got)
	}
	if got := rr.Header().Get(HeaderArchiveRequests); got != "1" {
		t.Errorf("X-Archive-Requests = %q", got)
	}
	var items []record.Patient
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Name != "John Smith" {
		t.Errorf("items = %+v", items)
	}
}

func TestSearchPatients_EmptyValuesAreNoFilter(t *testing.T) {
	f := newFixture()
	f.search.patients = record.Page[record.Patient]{Total: -1}

	rr := f.do(http.MethodGet, "/api/patients?patientFamilyName=&limitOfPatients=&fuzzyMatching=", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.search.lastPatient.FamilyName != "" || f.search.lastPatient.Limit != 0 {
		t.Errorf("unexpected criteria: %+v", f.search.lastPatient)
	}
	if rr.Header().Get(HeaderTotalCount) != "" {
		t.Error("unknown total must not be reported")
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestSearchPatients_InvalidLimitFormat(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodGet, "/api/patients?limitOfPatients=ten", "")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeBadRequest {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSearchStudies_BindsFormFields(t *testing.T) {
	f := newFixture()
	f.search.studies = record.Page[record.Study]{Total: -1}

	rr := f.do(http.MethodGet,
		"/api/studies?modality=All&studyDate=2024-01-01&studyTime=10:30&institutionalName=General&limit=50", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	c := f.search.lastStudy
	if c.Modality != "All" || c.StudyDate != "2024-01-01" || c.StudyTime != "10:30" ||
		c.InstitutionName != "General" || c.Limit != 50 {
		t.Errorf("unexpected criteria: %+v", c)
	}
}

func TestPatientStudies_PathID(t *testing.T) {
	f := newFixture()
	f.search.studies = record.Page[record.Study]{Items: []record.Study{{ID: "1"}}, Total: -1}

	rr := f.do(http.MethodGet, "/api/patients/P-001/studies?webAppService=DCM4CHEE", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.search.lastPID != "P-001" {
		t.Errorf("patient id = %q", f.search.lastPID)
	}
	if f.search.lastStudy.Service != "DCM4CHEE" {
		t.Errorf("service = %q", f.search.lastStudy.Service)
	}
}

func TestSearchSeriesAndWorklist_Bind(t *testing.T) {
	f := newFixture()

	if rr := f.do(http.MethodGet, "/api/series?studyInstanceUID=1.2.3&modality=CT&seriesDate=2024-02-02", ""); rr.Code != http.StatusOK {
		t.Fatalf("series status = %d", rr.Code)
	}
	if f.search.lastSeries.StudyInstanceUID != "1.2.3" || f.search.lastSeries.Modality != "CT" {
		t.Errorf("series criteria: %+v", f.search.lastSeries)
	}

	if rr := f.do(http.MethodGet, "/api/mwl?modality=MR&scheduledStationAET=STATION1&spsStartTime=08:00", ""); rr.Code != http.StatusOK {
		t.Fatalf("mwl status = %d", rr.Code)
	}
	w := f.search.lastWorklist
	if w.Modality != "MR" || w.ScheduledStationAET != "STATION1" || w.StartTime != "08:00" {
		t.Errorf("worklist criteria: %+v", w)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		wantMsg    string
	}{
		{
			name:       "invalid criteria keeps detail",
			err:        fmt.Errorf("%w: unsupported orderby %q", domain.ErrInvalidCriteria, "Foo"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
			wantMsg:    `invalid search criteria: unsupported orderby "Foo"`,
		},
		{
			name:       "unknown archive drops call chain",
			err:        fmt.Errorf("search studies: %w: X (available: DCM4CHEE)", domain.ErrUnknownArchive),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeUnknownArchive,
			wantMsg:    "unknown archive: X (available: DCM4CHEE)",
		},
		{
			name:       "authentication",
			err:        fmt.Errorf("archive DCM4CHEE: %w", domain.ErrAuthentication),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeArchiveAuthFailed,
		},
		{
			name:       "archive status passes through",
			err:        fmt.Errorf("search studies: %w", domain.NewHTTPError(http.StatusForbidden, "secret body")),
			wantStatus: http.StatusForbidden,
			wantCode:   CodeArchiveError,
			wantMsg:    "archive returned HTTP 403",
		},
		{
			name:       "transport keeps network cause",
			err:        fmt.Errorf("search studies: %w", domain.NewTransportError(errors.New("dial tcp: connection refused"))),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeArchiveUnavailable,
			wantMsg:    "archive transport error: dial tcp: connection refused",
		},
		{
			name:       "bare transport sentinel",
			err:        fmt.Errorf("ping archive: %w", domain.ErrTransport),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeArchiveUnavailable,
			wantMsg:    domain.ErrTransport.Error(),
		},
		{
			name:       "not found",
			err:        fmt.Errorf("x: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
			wantMsg:    "internal error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.search.err = tc.err

			rr := f.do(http.MethodGet, "/api/studies", "")
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			resp := decodeError(t, rr)
			if resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
			if tc.wantMsg != "" && resp.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tc.wantMsg)
			}
		})
	}
}

func TestHospitals(t *testing.T) {
	f := newFixture()
	f.institutions.list = []record.Institution{{ID: 1, Name: "General"}, {ID: 2, Name: "North"}}

	rr := f.do(http.MethodGet, "/api/hospitals", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []record.Institution
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d", len(list))
	}

	rr = f.do(http.MethodGet, "/api/hospitals/2", "")
	if rr.Code != http.StatusOK || f.institutions.lastID != 2 {
		t.Errorf("get status = %d, id = %d", rr.Code, f.institutions.lastID)
	}

	if rr = f.do(http.MethodGet, "/api/hospitals/9", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing hospital status = %d", rr.Code)
	}
	if rr = f.do(http.MethodGet, "/api/hospitals/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture()
	f.dashboard.stats = dashboarduc.Stats{TotalStudies: 3, TotalPatients: 2}

	rr := f.do(http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var stats dashboarduc.Stats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalStudies != 3 || stats.TotalPatients != 2 {
		t.Errorf("stats = %+v", stats)
	}

	if rr = f.do(http.MethodGet, "/api/dashboard/hospital/7", ""); rr.Code != http.StatusOK {
		t.Fatalf("hospital status = %d", rr.Code)
	}
	if f.dashboard.lastHospital != "7" {
		t.Errorf("hospital id = %q", f.dashboard.lastHospital)
	}
}

func TestQuickSearch(t *testing.T) {
	f := newFixture()
	f.assistant.quick = assistantuc.QuickResult{
		Patients: []assistantuc.PatientHit{{PatientID: "P1", PatientName: "Doe^John"}},
		Studies:  []assistantuc.StudyHit{},
	}

	rr := f.do(http.MethodGet, "/api/quick-search?q=doe&webAppService=DCM4CHEE", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.assistant.lastQ != "doe" || f.assistant.lastService != "DCM4CHEE" {
		t.Errorf("q = %q, service = %q", f.assistant.lastQ, f.assistant.lastService)
	}
	var res assistantuc.QuickResult
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Patients) != 1 || res.Studies == nil {
		t.Errorf("result = %+v", res)
	}
}

func TestSmartSearch(t *testing.T) {
	f := newFixture()
	f.assistant.answer = assistantuc.Answer{Answer: "42 studies", Model: "qwen2.5", ConversationID: "c1"}

	rr := f.do(http.MethodPost, "/api/smart-search",
		`{"question":"How many studies?","history":[{"role":"user","content":"hi"}],"conversationId":"c1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	q := f.assistant.lastQuestion
	if q.Question != "How many studies?" || len(q.History) != 1 || q.ConversationID != "c1" {
		t.Errorf("question = %+v", q)
	}
	var answer assistantuc.Answer
	if err := json.NewDecoder(rr.Body).Decode(&answer); err != nil {
		t.Fatal(err)
	}
	if answer.Answer != "42 studies" || answer.ConversationID != "c1" {
		t.Errorf("answer = %+v", answer)
	}
}

func TestSmartSearch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"invalid json", `{"question":`, nil, http.StatusBadRequest},
		{"missing question", `{}`, fmt.Errorf("%w: question is required", domain.ErrInvalidCriteria), http.StatusBadRequest},
		{"not configured", `{"question":"q"}`, domain.ErrAssistantNotConfigured, http.StatusServiceUnavailable},
		{"quota", `{"question":"q"}`, fmt.Errorf("ask: budget check: %w", domain.ErrAssistantQuotaExceeded), http.StatusTooManyRequests},
		{"provider", `{"question":"q"}`, fmt.Errorf("ask: %w", domain.ErrAssistantProvider), http.StatusBadGateway},
		{"provider auth", `{"question":"q"}`, fmt.Errorf("ask: %w", domain.ErrAssistantAuth), http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.assistant.err = tc.err
			rr := f.do(http.MethodPost, "/api/smart-search", tc.body)
			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestAssistantUsage(t *testing.T) {
	f := newFixture()

	rr := f.do(http.MethodGet, "/api/assistant/usage", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if f.usage.period != domusage.PeriodDay {
		t.Errorf("expected default period day, got %q", f.usage.period)
	}
	var got domusage.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TokensUsed != 1500 || got.Budget.TokensRemaining != 8500 {
		t.Errorf("unexpected report %+v", got)
	}

	rr = f.do(http.MethodGet, "/api/assistant/usage?period=month", "")
	if rr.Code != http.StatusOK || f.usage.period != domusage.PeriodMonth {
		t.Errorf("month: status %d period %q", rr.Code, f.usage.period)
	}

	rr = f.do(http.MethodGet, "/api/assistant/usage?period=year", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeValidationFailed {
		t.Errorf("expected %s, got %s", CodeValidationFailed, resp.Code)
	}
}

func TestArchiveConfigPassthrough(t *testing.T) {
	f := newFixture()
	f.config.body = json.RawMessage(`[{"dicomDeviceName":"dcm4chee-arc"}]`)

	rr := f.do(http.MethodGet, "/api/devices", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.config.lastKind != archiveconfuc.Devices {
		t.Errorf("kind = %q", f.config.lastKind)
	}
	if got := rr.Body.String(); got != `[{"dicomDeviceName":"dcm4chee-arc"}]` {
		t.Errorf("body = %s", got)
	}

	if rr = f.do(http.MethodGet, "/api/hl7apps/HL7RCV", ""); rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if f.config.lastKind != archiveconfuc.HL7Apps || f.config.lastName != "HL7RCV" {
		t.Errorf("kind = %q, name = %q", f.config.lastKind, f.config.lastName)
	}

	f.config.body = json.RawMessage(`[{"id":"STORESCP"}]`)
	if rr = f.do(http.MethodGet, "/api/export-rules?webAppService=DCM4CHEE", ""); rr.Code != http.StatusOK {
		t.Fatalf("export rules status = %d", rr.Code)
	}
	if f.config.lastKind != archiveconfuc.ExportRules {
		t.Errorf("kind = %q", f.config.lastKind)
	}
	if got := rr.Body.String(); got != `[{"id":"STORESCP"}]` {
		t.Errorf("export rules body = %s", got)
	}

	f.config.err = fmt.Errorf("aes X: %w", domain.ErrNotFound)
	if rr = f.do(http.MethodGet, "/api/aes/X", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing ae status = %d", rr.Code)
	}
}

func TestListArchives(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodGet, "/api/archives", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var list []domain.ArchiveInfo
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "DCM4CHEE" || list[0].Status != "active" {
		t.Errorf("archives = %+v", list)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	f.health.report = healthuc.Report{
		Status:   healthuc.Degraded,
		Checks:   map[string]healthuc.CheckResult{"database": healthuc.CheckError},
		Archives: []string{"DCM4CHEE"},
	}

	rr := f.do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != healthuc.Degraded || resp.Checks["database"] != healthuc.CheckError || len(resp.Archives) != 1 {
		t.Errorf("health = %+v", resp)
	}
}

func TestCORS_Preflight(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodOptions, "/api/smart-search", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow credentials = %q", got)
	}
}

func TestCORS_UnknownOrigin(t *testing.T) {
	f := newFixture()
	f.search.studies = record.Page[record.Study]{Total: -1}

	req := httptest.NewRequest(http.MethodGet, "/api/studies", http.NoBody)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow origin = %q, want empty", got)
	}
}

func TestUnknownRoute_JSON404(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeNotFound {
		t.Errorf("code = %s", resp.Code)
	}
}
