package curalink

import (
	"context"
	"sync"
)

// Session runs console searches with last-search-wins semantics: one slot per
// search kind, and starting a search cancels the one it supersedes.
// A Session is safe for concurrent use.
type Session struct {
	client *Client

	patients tracked[Result[Patient]]
	studies  tracked[Result[Study]]
	series   tracked[Result[Series]]
	worklist tracked[Result[WorklistItem]]
}

// tracked pairs a slot with the cancel func of its in-flight search.
type tracked[T any] struct {
	slot   Slot[T]
	mu     sync.Mutex
	cancel context.CancelFunc
}

// start supersedes the in-flight search and returns the new generation.
func (t *tracked[T]) start(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	gen := t.slot.Begin()
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	return ctx, gen, cancel
}

func run[T any](ctx context.Context, t *tracked[T], fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, gen, cancel := t.start(ctx)
	defer cancel()

	v, err := fn(ctx)
	if !t.slot.Current(gen) {
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}
	if !t.slot.Commit(gen, v) {
		return zero, ErrSuperseded
	}
	return v, nil
}

// Patients runs a patient search. It returns ErrSuperseded when a newer
// patient search started before this one finished.
func (s *Session) Patients(ctx context.Context, q PatientQuery) (Result[Patient], error) {
	return run(ctx, &s.patients, func(ctx context.Context) (Result[Patient], error) {
		return s.client.Patients(ctx, q)
	})
}

// Studies runs a study search with the same supersession rule as Patients.
func (s *Session) Studies(ctx context.Context, q StudyQuery) (Result[Study], error) {
	return run(ctx, &s.studies, func(ctx context.Context) (Result[Study], error) {
		return s.client.Studies(ctx, q)
	})
}

// PatientStudies shares the study slot: opening a patient supersedes a study search.
func (s *Session) PatientStudies(ctx context.Context, patientID string, q StudyQuery) (Result[Study], error) {
	return run(ctx, &s.studies, func(ctx context.Context) (Result[Study], error) {
		return s.client.PatientStudies(ctx, patientID, q)
	})
}

// Series runs a series search.
func (s *Session) Series(ctx context.Context, q SeriesQuery) (Result[Series], error) {
	return run(ctx, &s.series, func(ctx context.Context) (Result[Series], error) {
		return s.client.Series(ctx, q)
	})
}

// Worklist runs a worklist search.
func (s *Session) Worklist(ctx context.Context, q WorklistQuery) (Result[WorklistItem], error) {
	return run(ctx, &s.worklist, func(ctx context.Context) (Result[WorklistItem], error) {
		return s.client.Worklist(ctx, q)
	})
}

// CurrentPatients returns the latest committed patient results.
func (s *Session) CurrentPatients() (Result[Patient], bool) {
	v, gen := s.patients.slot.Load()
	return v, gen > 0
}

// CurrentStudies returns the latest committed study results.
func (s *Session) CurrentStudies() (Result[Study], bool) {
	v, gen := s.studies.slot.Load()
	return v, gen > 0
}

// CurrentSeries returns the latest committed series results.
func (s *Session) CurrentSeries() (Result[Series], bool) {
	v, gen := s.series.slot.Load()
	return v, gen > 0
}

// CurrentWorklist returns the latest committed worklist results.
func (s *Session) CurrentWorklist() (Result[WorklistItem], bool) {
	v, gen := s.worklist.slot.Load()
	return v, gen > 0
}
