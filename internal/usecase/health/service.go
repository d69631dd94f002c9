package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeTimeout bounds each component probe so a hung dependency cannot stall /health.
const ProbeTimeout = 3 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Archives []string
}

// Service coordinates health checks.
type Service struct {
	archives ArchiveLister
	probes   []probe
	timeout  time.Duration
}

type probe struct {
	name string
	run  func(ctx context.Context) error
}

// New creates a Service. db and assistant can be nil; absent components are not checked.
// Archives are listed but never probed: a slow archive must not fail liveness.
func New(archives ArchiveLister, db DBPinger, assistant AssistantChecker) *Service {
	s := &Service{archives: archives, timeout: ProbeTimeout}
	if db != nil {
		s.probes = append(s.probes, probe{name: "database", run: db.Ping})
	}
	if assistant != nil {
		s.probes = append(s.probes, probe{name: "assistant", run: assistant.HealthCheck})
	}
	return s
}

// Check probes the optional components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.probes))
	var g errgroup.Group
	for i, p := range s.probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := p.run(pctx); err != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.probes)), Archives: []string{}}
	for i, p := range s.probes {
		report.Checks[p.name] = results[i]
		if results[i] == CheckError {
			report.Status = Degraded
		}
	}
	if s.archives != nil {
		report.Archives = append(report.Archives, s.archives.ArchiveIDs()...)
	}
	return report
}
