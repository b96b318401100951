package shutdown

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/vinayprograms/pagesum/logging"
)

// Phases. Lower phases stop first; steps in one phase stop concurrently.
const (
	PhaseListener = 10
	PhaseStorage  = 30
)

// DefaultTimeout bounds a whole shutdown.
const DefaultTimeout = 30 * time.Second

var (
	// ErrAlreadyShutdown is returned by every Shutdown after the first.
	ErrAlreadyShutdown = stderrors.New("shutdown already initiated")

	// ErrTimeout is returned when the deadline passes between phases.
	ErrTimeout = stderrors.New("shutdown timeout exceeded")
)

// Func stops one component.
type Func func(ctx context.Context) error

type step struct {
	name  string
	phase int
	fn    Func
}

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	Phase    int
	Duration time.Duration
	Err      error
}

// Coordinator runs registered steps once.
type Coordinator struct {
	timeout time.Duration
	logger  *logging.Logger

	mu      sync.Mutex
	steps   []step
	results []StepResult

	once sync.Once
	err  error
	done chan struct{}
}

// New creates a coordinator. A zero timeout means DefaultTimeout.
func New(timeout time.Duration, logger *logging.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{
		timeout: timeout,
		logger:  logger.WithComponent("shutdown"),
		done:    make(chan struct{}),
	}
}

// Register adds a step.
func (c *Coordinator) Register(name string, phase int, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step{name: name, phase: phase, fn: fn})
}

// Shutdown runs every step, phase by phase. Failed steps do not stop later
// phases; their errors are joined.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	ran := false
	c.once.Do(func() {
		ran = true
		c.err = c.run(ctx)
		close(c.done)
	})
	if !ran {
		return ErrAlreadyShutdown
	}
	return c.err
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx is done, then shuts down
// within the configured timeout.
func (c *Coordinator) WaitForSignal(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		c.logger.Info("signal", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.Shutdown(sctx)
}

// Done is closed once Shutdown has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Results returns the per-step outcomes, in the order they finished phases.
func (c *Coordinator) Results() []StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StepResult, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Coordinator) run(ctx context.Context) error {
	c.mu.Lock()
	steps := make([]step, len(c.steps))
	copy(steps, c.steps)
	c.mu.Unlock()

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].phase < steps[j].phase })

	var errs []error
	for len(steps) > 0 {
		n := 1
		for n < len(steps) && steps[n].phase == steps[0].phase {
			n++
		}
		phase := steps[:n]
		steps = steps[n:]

		if ctx.Err() != nil {
			return stderrors.Join(append(errs, ErrTimeout)...)
		}

		for _, r := range c.runPhase(ctx, phase) {
			if r.Err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
			}
		}
	}
	return stderrors.Join(errs...)
}

func (c *Coordinator) runPhase(ctx context.Context, phase []step) []StepResult {
	results := make([]StepResult, len(phase))
	var wg sync.WaitGroup
	for i, s := range phase {
		wg.Add(1)
		go func(i int, s step) {
			defer wg.Done()
			start := time.Now()
			err := s.fn(ctx)
			results[i] = StepResult{Name: s.name, Phase: s.phase, Duration: time.Since(start), Err: err}
		}(i, s)
	}
	wg.Wait()

	c.mu.Lock()
	c.results = append(c.results, results...)
	c.mu.Unlock()

	for _, r := range results {
		fields := map[string]interface{}{"step": r.Name, "phase": r.Phase, "duration": r.Duration.String()}
		if r.Err != nil {
			fields["error"] = r.Err.Error()
			c.logger.Error("step_failed", fields)
		} else {
			c.logger.Info("step_done", fields)
		}
	}
	return results
}
