package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AssistantChecker checks chat model provider availability.
type AssistantChecker interface {
	HealthCheck(ctx context.Context) error
}

// ArchiveLister names the configured archives.
type ArchiveLister interface {
	ArchiveIDs() []string
}
