package disturb

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/guiltyguilty/disturb/internal/platform/correlation"
	"github.com/jonboulle/clockwork"
)

// State is the lifecycle position of a Service.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateFiring
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFiring:
		return "firing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Service fires at exponentially distributed intervals and disturbs one
// member per firing. Members are fixed at construction, so the aggregate
// rate is computed once.
type Service struct {
	members   []*Element
	totalRate float64

	clock    clockwork.Clock
	rng      Rand
	recorder domain.DisturbRecorder

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithClock(clock clockwork.Clock) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

func WithRand(r Rand) ServiceOption {
	return func(s *Service) { s.rng = r }
}

func WithRecorder(r domain.DisturbRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// NewService returns an idle service over members. An empty member set is
// rejected with domain.ErrNoMembers because its aggregate rate would be zero.
func NewService(members []*Element, opts ...ServiceOption) (*Service, error) {
	if len(members) == 0 {
		return nil, domain.ErrNoMembers
	}

	s := &Service{
		members:  members,
		clock:    clockwork.NewRealClock(),
		rng:      globalRand{},
		recorder: domain.NopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, m := range members {
		s.totalRate += m.Rate()
	}

	return s, nil
}

func (s *Service) Len() int { return len(s.members) }

// TotalRate is the sum of member rates, in firings per millisecond.
func (s *Service) TotalRate() float64 { return s.totalRate }

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start schedules the first firing and returns immediately. The loop runs
// until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
	case StateStopped:
		return domain.ErrServiceStopped
	default:
		return domain.ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateScheduled

	first := s.drawExp()
	slog.Info("Disturb service started", "members", len(s.members), "total_rate", s.totalRate, "first_delay", first)

	go s.run(loopCtx, first)
	return nil
}

// Stop cancels future firings and blocks until the loop has exited. Pending
// restores still fire. Safe to call more than once and before Start.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateStopped
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Service) run(ctx context.Context, delay time.Duration) {
	defer close(s.done)
	defer s.setState(StateStopped)

	for {
		s.recorder.Scheduled(delay)
		timer := s.clock.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Disturb service stopped")
			return
		case <-timer.Chan():
		}

		s.setState(StateFiring)
		fireCtx := correlation.WithID(ctx, correlation.NewScopedID(correlation.ScopeFiring))
		s.Disturb(fireCtx)

		delay = s.drawExp()
		s.setState(StateScheduled)
		slog.DebugContext(fireCtx, "Disturb service rescheduled", "delay", delay)
	}
}

// Disturb picks a member uniformly at random, independent of the member
// rates, disturbs it and returns its index.
func (s *Service) Disturb(ctx context.Context) int {
	idx := s.rng.IntN(len(s.members))
	member := s.members[idx]

	scrambled := member.Disturb()
	s.recorder.Fired(idx)

	slog.DebugContext(ctx, "Disturbed element", "index", idx, "element", member.ID(), "text", scrambled)
	return idx
}

// drawExp draws an exponentially distributed delay with rate totalRate per
// millisecond by inverting the CDF of a uniform draw on (0, 1).
func (s *Service) drawExp() time.Duration {
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	return millisToDuration(-math.Log(u) / s.totalRate)
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func millisToDuration(ms float64) time.Duration {
	ns := ms * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
