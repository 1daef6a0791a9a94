package barvis

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/peragwin/agentfx/agent"
)

// Timer starts a one-shot timer. The returned func stops it.
type Timer func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTimer replaces the wall clock timer.
func WithTimer(t Timer) SchedulerOption {
	return func(s *Scheduler) { s.timer = t }
}

// WithOnPhase registers fn to be called after every phase advance. fn runs on
// the scheduler goroutine and must not call SetState or Stop.
func WithOnPhase(fn func(state agent.State, phase int)) SchedulerOption {
	return func(s *Scheduler) { s.onPhase = fn }
}

// Scheduler advances a phase counter at the cadence of the current agent
// state. At most one animation loop runs per Scheduler, and a state change
// never lets the previous loop advance the new state's phase.
type Scheduler struct {
	props   Properties
	timer   Timer
	onPhase func(agent.State, int)

	// serialises SetState and Stop
	transition sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}

	mu      sync.Mutex
	state   agent.State
	pattern []Highlight
	cadence time.Duration
	phase   int
	gen     uint64
}

// NewScheduler returns a stopped scheduler in the idle state.
func NewScheduler(barCount int, opts ...SchedulerOption) *Scheduler {
	if barCount < 1 {
		barCount = 1
	}
	props := Properties{BarCount: barCount}
	s := &Scheduler{
		props:   props,
		timer:   realTimer,
		state:   agent.Idle,
		pattern: props.Pattern(agent.Idle),
		cadence: props.Cadence(agent.Idle),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetState restarts the animation for st: the running loop is cancelled and
// waited for, the phase resets to 0 and a new loop starts. When SetState
// returns the new state is in effect. Concurrent calls are serialised; the
// last one wins.
func (s *Scheduler) SetState(st agent.State) {
	if !st.Valid() {
		st = agent.Idle
	}

	s.transition.Lock()
	defer s.transition.Unlock()

	s.stopLoop()

	s.mu.Lock()
	s.state = st
	s.phase = 0
	s.pattern = s.props.Pattern(st)
	s.cadence = s.props.Cadence(st)
	s.gen++
	gen, cadence := s.gen, s.cadence
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go s.loop(ctx, gen, cadence, done)

	glog.V(2).Infof("bar animation: %v every %v", st, cadence)
}

// Stop cancels the animation loop and waits for it to exit. The highlight
// stays at its last phase. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.transition.Lock()
	defer s.transition.Unlock()
	s.stopLoop()
}

func (s *Scheduler) stopLoop() {
	if s.cancel == nil {
		return
	}
	// a timer that fires while the loop is being cancelled must not advance
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Scheduler) loop(ctx context.Context, gen uint64, cadence time.Duration, done chan struct{}) {
	defer close(done)
	for {
		c, stop := s.timer(cadence)
		select {
		case <-ctx.Done():
			stop()
			return
		case <-c:
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.phase++
		state, phase := s.state, s.phase
		s.mu.Unlock()

		if s.onPhase != nil {
			s.onPhase(state, phase)
		}
	}
}

// Highlighted returns the bars highlighted at the current phase.
func (s *Scheduler) Highlighted() Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(Highlight{}, s.pattern[s.phase%len(s.pattern)]...)
}

// Phase returns the phase counter.
func (s *Scheduler) Phase() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// State returns the current agent state.
func (s *Scheduler) State() agent.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cadence returns the current phase duration.
func (s *Scheduler) Cadence() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cadence
}

// Pattern returns the current highlight sequence.
func (s *Scheduler) Pattern() []Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Highlight(nil), s.pattern...)
}
