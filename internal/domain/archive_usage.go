package domain

import (
	"context"
	"sync/atomic"
)

type archiveUsageKey struct{}

// ArchiveUsage collects archive traffic for a single HTTP request.
// The handler puts a pointer into the context before calling the service;
// the executor records each call, possibly from several goroutines;
// the handler reads the totals for response headers.
type ArchiveUsage struct {
	requests      atomic.Int64
	tokenRequests atomic.Int64
}

// NewContextWithArchiveUsage returns a context with an embedded usage collector.
func NewContextWithArchiveUsage(ctx context.Context) (context.Context, *ArchiveUsage) {
	u := &ArchiveUsage{}
	return context.WithValue(ctx, archiveUsageKey{}, u), u
}

// ArchiveUsageFromContext extracts the usage collector from context. Returns nil if not set.
func ArchiveUsageFromContext(ctx context.Context) *ArchiveUsage {
	u, _ := ctx.Value(archiveUsageKey{}).(*ArchiveUsage)
	return u
}

// AddRequest records one archive round trip.
func (u *ArchiveUsage) AddRequest() {
	if u != nil {
		u.requests.Add(1)
	}
}

// AddTokenRequest records one bearer token lookup.
func (u *ArchiveUsage) AddTokenRequest() {
	if u != nil {
		u.tokenRequests.Add(1)
	}
}

// Requests returns the number of archive round trips.
func (u *ArchiveUsage) Requests() int {
	if u == nil {
		return 0
	}
	return int(u.requests.Load())
}

// TokenRequests returns the number of bearer token lookups.
func (u *ArchiveUsage) TokenRequests() int {
	if u == nil {
		return 0
	}
	return int(u.tokenRequests.Load())
}
