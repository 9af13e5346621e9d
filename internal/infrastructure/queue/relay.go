package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/api/metrics"
	"github.com/servicemarket/admin-console/internal/core/domain"
)

// Subscriber is the notification side of the session store.
type Subscriber interface {
	Subscribe() (<-chan domain.Session, func())
}

// Handler reacts to one session snapshot. prev is the previously relayed
// snapshot, the zero Session for the first one.
type Handler func(ctx context.Context, prev, next domain.Session)

// Relay consumes session notifications on a single worker goroutine and hands
// every snapshot to its handlers in order.
type Relay struct {
	source   Subscriber
	handlers []Handler
	log      zerolog.Logger

	wg sync.WaitGroup
}

// NewRelay creates a Relay over source.
func NewRelay(source Subscriber, log zerolog.Logger, handlers ...Handler) *Relay {
	return &Relay{
		source:   source,
		handlers: handlers,
		log:      log.With().Str("component", "session_relay").Logger(),
	}
}

// Start subscribes and launches the worker. The worker stops and
// unsubscribes when ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	updates, unsubscribe := r.source.Subscribe()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer unsubscribe()
		r.run(ctx, updates)
	}()
}

// Wait blocks until the worker has stopped.
func (r *Relay) Wait() {
	r.wg.Wait()
}

func (r *Relay) run(ctx context.Context, updates <-chan domain.Session) {
	var prev domain.Session
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-updates:
			if !ok {
				return
			}
			for _, h := range r.handlers {
				r.dispatch(ctx, h, prev, next)
			}
			prev = next
		}
	}
}

func (r *Relay) dispatch(ctx context.Context, h Handler, prev, next domain.Session) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("status", string(next.Status)).Msg("session handler panicked")
		}
	}()
	h(ctx, prev, next)
}

// MetricsHandler records transitions and the authenticated gauge.
func MetricsHandler() Handler {
	return func(_ context.Context, prev, next domain.Session) {
		if prev.Status != next.Status {
			from := string(prev.Status)
			if from == "" {
				from = string(domain.StatusIdle)
			}
			metrics.SessionTransitionsTotal.WithLabelValues(from, string(next.Status)).Inc()
		}
		if next.IsAuthenticated {
			metrics.SessionAuthenticated.Set(1)
		} else {
			metrics.SessionAuthenticated.Set(0)
		}
	}
}

// AuditHandler logs sign-ins, sign-outs and recorded errors.
func AuditHandler(log zerolog.Logger) Handler {
	log = log.With().Str("component", "session_audit").Logger()
	return func(_ context.Context, prev, next domain.Session) {
		switch {
		case !prev.IsAuthenticated && next.IsAuthenticated:
			log.Info().Str("user_id", next.User.ID).Str("role", string(next.User.Role)).Msg("signed in")
		case prev.IsAuthenticated && !next.IsAuthenticated:
			ev := log.Info()
			if prev.User != nil {
				ev = ev.Str("user_id", prev.User.ID)
			}
			ev.Msg("signed out")
		}
		if next.Error != "" && next.Error != prev.Error {
			log.Warn().Str("status", string(next.Status)).Str("error", next.Error).Msg("session operation failed")
		}
	}
}
