package curalink

import (
	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	"github.com/kailas-cloud/curalink/internal/domain/usage"
	archiveconfuc "github.com/kailas-cloud/curalink/internal/usecase/archiveconf"
	assistantuc "github.com/kailas-cloud/curalink/internal/usecase/assistant"
	dashboarduc "github.com/kailas-cloud/curalink/internal/usecase/dashboard"
)

// Search forms. Field names follow the console; Service selects the archive.
type (
	PatientQuery  = criteria.Patient
	StudyQuery    = criteria.Study
	SeriesQuery   = criteria.Series
	WorklistQuery = criteria.Worklist
)

// Display rows returned by the gateway.
type (
	Patient      = record.Patient
	Study        = record.Study
	Series       = record.Series
	WorklistItem = record.WorklistItem
	Hospital     = record.Institution
)

// Archive describes a configured archive.
type Archive = domain.ArchiveInfo

// DashboardStats is the dashboard payload.
type DashboardStats = dashboarduc.Stats

// QuickResult holds quick search matches.
type QuickResult = assistantuc.QuickResult

// Answer is a smart search answer.
type Answer = assistantuc.Answer

// ChatMessage is one turn of an assistant conversation.
type ChatMessage = domain.ChatMessage

// UsageReport is the assistant token usage for one period.
type UsageReport = usage.Report

// UsagePeriod selects the usage report period.
type UsagePeriod = usage.Period

// Usage periods.
const (
	UsageDay   = usage.PeriodDay
	UsageMonth = usage.PeriodMonth
)

// ConfigKind is an archive configuration collection.
type ConfigKind = archiveconfuc.Kind

// Configuration collections.
const (
	ConfigDevices     = archiveconfuc.Devices
	ConfigAEs         = archiveconfuc.AEs
	ConfigHL7Apps     = archiveconfuc.HL7Apps
	ConfigExportRules = archiveconfuc.ExportRules
)

// Result is one page of search results.
type Result[T any] struct {
	Items []T
	// Total is the archive-reported match count, -1 when not reported.
	Total int
	// ArchiveRequests is the number of archive round trips the gateway made.
	ArchiveRequests int
}

// HealthStatus represents the aggregated gateway health.
type HealthStatus struct {
	Status   string            // "ok", "degraded"
	Checks   map[string]string // component → "ok"/"error"
	Archives []string
}
