package barvis

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peragwin/agentfx/agent"
	"github.com/peragwin/agentfx/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	testutil.VerifyTestMain(m)
}

type timerRequest struct {
	d       time.Duration
	c       chan time.Time
	stopped *atomic.Bool
}

// fakeTimer hands every timer the scheduler starts to the test, which fires
// it by hand.
type fakeTimer struct {
	reqs chan timerRequest
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{reqs: make(chan timerRequest, 256)}
}

func (f *fakeTimer) timer(d time.Duration) (<-chan time.Time, func() bool) {
	r := timerRequest{d: d, c: make(chan time.Time, 1), stopped: new(atomic.Bool)}
	f.reqs <- r
	return r.c, func() bool { return !r.stopped.Swap(true) }
}

// next returns the oldest timer that is still running. Timers stopped by a
// cancelled loop are skipped.
func (f *fakeTimer) next(t *testing.T) timerRequest {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case r := <-f.reqs:
			if r.stopped.Load() {
				continue
			}
			return r
		case <-deadline:
			t.Fatal("scheduler did not start a timer")
			return timerRequest{}
		}
	}
}

func newTestScheduler(t *testing.T, n int) (*Scheduler, *fakeTimer, chan int) {
	t.Helper()
	ft := newFakeTimer()
	phases := make(chan int, 256)
	s := NewScheduler(n, WithTimer(ft.timer), WithOnPhase(func(_ agent.State, p int) {
		phases <- p
	}))
	t.Cleanup(s.Stop)
	return s, ft, phases
}

func waitPhase(t *testing.T, phases chan int, want int) {
	t.Helper()
	select {
	case p := <-phases:
		require.Equal(t, want, p)
	case <-time.After(time.Second):
		t.Fatalf("phase %d never reached", want)
	}
}

func TestThinkingSweep(t *testing.T) {
	s, ft, phases := newTestScheduler(t, 4)
	s.SetState(agent.Thinking)

	want := []Highlight{{0}, {1}, {2}, {3}, {3}, {2}, {1}, {0}, {0}, {1}}
	for i, h := range want {
		assert.Equal(t, h, s.Highlighted(), "phase %d", i)
		r := ft.next(t)
		assert.Equal(t, 150*time.Millisecond, r.d)
		r.c <- time.Now()
		waitPhase(t, phases, i+1)
	}
}

func TestStateSequence(t *testing.T) {
	s, ft, phases := newTestScheduler(t, 5)

	assert.Equal(t, agent.Idle, s.State())
	assert.Equal(t, Highlight{}, s.Highlighted())

	s.SetState(agent.Idle)
	assert.Equal(t, VeryLongCadence, ft.next(t).d)

	s.SetState(agent.Thinking)
	assert.Equal(t, 0, s.Phase())
	assert.Equal(t, Highlight{0}, s.Highlighted())
	r := ft.next(t)
	assert.Equal(t, 150*time.Millisecond, r.d)
	r.c <- time.Now()
	waitPhase(t, phases, 1)
	assert.Equal(t, Highlight{1}, s.Highlighted())

	s.SetState(agent.Listening)
	assert.Equal(t, 0, s.Phase(), "phase resets on every transition")
	assert.Equal(t, Highlight{2}, s.Highlighted())
	r = ft.next(t)
	assert.Equal(t, 500*time.Millisecond, r.d)
	r.c <- time.Now()
	waitPhase(t, phases, 1)
	assert.Equal(t, Highlight{}, s.Highlighted())

	s.SetState(agent.Speaking)
	assert.Equal(t, Highlight{0, 1, 2, 3, 4}, s.Highlighted())
	assert.Equal(t, VeryLongCadence, ft.next(t).d)

	s.SetState(agent.Idle)
	assert.Equal(t, Highlight{}, s.Highlighted())
	assert.Equal(t, VeryLongCadence, s.Cadence())
	assert.Equal(t, []Highlight{{}}, s.Pattern())
}

func TestNoStaleAdvance(t *testing.T) {
	s, ft, phases := newTestScheduler(t, 4)

	s.SetState(agent.Thinking)
	old := ft.next(t)

	s.SetState(agent.Listening)
	fresh := ft.next(t)

	// the cancelled loop's timer fires after the transition
	old.c <- time.Now()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, s.Phase())
	assert.Equal(t, Highlight{1, 2}, s.Highlighted())

	fresh.c <- time.Now()
	waitPhase(t, phases, 1)
	assert.Equal(t, Highlight{}, s.Highlighted())
}

func TestStop(t *testing.T) {
	s, ft, phases := newTestScheduler(t, 4)
	s.Stop() // before any state

	s.SetState(agent.Thinking)
	r := ft.next(t)
	r.c <- time.Now()
	waitPhase(t, phases, 1)

	s.Stop()
	s.Stop()
	assert.Equal(t, 1, s.Phase(), "stop keeps the last phase")
	assert.Equal(t, Highlight{1}, s.Highlighted())
}

func TestStopFencesFiredTimer(t *testing.T) {
	gate := make(chan struct{})
	release := sync.OnceFunc(func() { close(gate) })
	t.Cleanup(release)

	var advanced atomic.Int32
	s := NewScheduler(4,
		WithTimer(func(time.Duration) (<-chan time.Time, func() bool) {
			<-gate
			c := make(chan time.Time, 1)
			c <- time.Now()
			return c, func() bool { return false }
		}),
		WithOnPhase(func(agent.State, int) { advanced.Add(1) }),
	)
	s.SetState(agent.Thinking)

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	// the loop is parked inside the timer; fire it only once Stop has
	// started retiring the generation
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.gen != gen
	}, time.Second, time.Millisecond)
	release()
	<-stopped

	assert.Equal(t, 0, s.Phase())
	assert.Zero(t, advanced.Load())
	assert.Equal(t, Highlight{0}, s.Highlighted())
}

func TestConcurrentSetState(t *testing.T) {
	s, _, _ := newTestScheduler(t, 5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetState(agent.States[i%len(agent.States)])
			_ = s.Highlighted()
		}(i)
	}
	wg.Wait()

	st := s.State()
	assert.Equal(t, 0, s.Phase())
	assert.Equal(t, Properties{BarCount: 5}.Pattern(st)[0], s.Highlighted())
}

func TestRealTimerAdvances(t *testing.T) {
	s := NewScheduler(3)
	defer s.Stop()
	s.SetState(agent.Thinking)
	assert.Eventually(t, func() bool { return s.Phase() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestInvalidStateIsIdle(t *testing.T) {
	s, _, _ := newTestScheduler(t, 4)
	s.SetState(agent.State(17))
	assert.Equal(t, agent.Idle, s.State())
	assert.Equal(t, Highlight{}, s.Highlighted())
}
