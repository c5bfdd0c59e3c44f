package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/mgomes/cdgcview/internal/catalog"
	"github.com/mgomes/cdgcview/internal/metrics"
)

// Catalog is the subset of catalog.Client the views depend on.
type Catalog interface {
	Health(ctx context.Context) (string, error)
	Ready(ctx context.Context) (catalog.Readiness, error)
	Search(ctx context.Context, query string, opts catalog.SearchOptions) (catalog.SearchResultSet, error)
	Lineage(ctx context.Context, req catalog.LineageRequest) (catalog.LineageGraph, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// requestState is the lifecycle of a view's latest request. token grows by
// one per request; only the result carrying the current token may settle
// the state.
type requestState struct {
	phase Phase
	token uint64
	err   error
}

func (s *requestState) begin() uint64 {
	s.token++
	s.phase = PhaseLoading
	s.err = nil
	return s.token
}

func (s requestState) current(token uint64) bool {
	return token == s.token
}

func (s *requestState) settle(err error) {
	if err != nil {
		s.phase = PhaseFailed
		s.err = err
		return
	}
	s.phase = PhaseSucceeded
	s.err = nil
}

// requester is what a view needs to issue requests.
type requester struct {
	catalog Catalog
	timeout time.Duration
	logger  *slog.Logger
}

func (r requester) context() (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(context.Background(), r.timeout)
	}
	return context.WithCancel(context.Background())
}

func (r requester) discardStale(view string, token, latest uint64) {
	metrics.StaleResponses.WithLabelValues(view).Inc()
	if r.logger == nil {
		return
	}
	r.logger.Debug("discarding superseded response", "view", view, "token", token, "latest", latest)
}
