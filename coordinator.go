package sitemath

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Completion is the callback a job invokes exactly once when it finishes.
// A non-nil error marks the job as failed; it still counts as completed.
type Completion func(err error)

// Transformer starts one asynchronous job for an item.
// Transform may return before the job finishes, but must eventually call
// onComplete exactly once, on success and on failure alike.
type Transformer interface {
	Transform(ctx context.Context, item Item, onComplete Completion)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx context.Context, item Item, onComplete Completion)

// Transform calls f(ctx, item, onComplete).
func (f TransformerFunc) Transform(ctx context.Context, item Item, onComplete Completion) {
	f(ctx, item, onComplete)
}

// Coordinator launches one job per item and signals once every job has
// completed exactly once. The pending count is fixed from the collections
// snapshot before any job starts.
type Coordinator struct {
	collections []Collection
	progress    io.Writer
	now         func() time.Time

	mu         sync.Mutex
	pending    int
	launched   bool
	results    []Result
	violations int
	done       chan struct{}
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithProgress writes a "Rendering: <name>" line to w as each job starts.
func WithProgress(w io.Writer) CoordinatorOption {
	return func(c *Coordinator) {
		c.progress = w
	}
}

// WithClock overrides the time source used for job durations.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator counts the items of all collections into the pending count.
// With no items at all, Done is already closed.
func NewCoordinator(collections []Collection, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		collections: collections,
		now:         time.Now,
		pending:     countItems(collections),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.results = make([]Result, 0, c.pending)
	if c.pending == 0 {
		close(c.done)
	}
	return c
}

// Pending returns the number of jobs not yet completed.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Violations returns how many completion signals broke the exactly-once rule.
func (c *Coordinator) Violations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violations
}

// Done is closed once the pending count reaches zero.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Launch starts a job for every item, home page first, without waiting
// for any of them. It can be called only once.
func (c *Coordinator) Launch(ctx context.Context, t Transformer) error {
	if t == nil {
		return ErrNilTransformer
	}

	c.mu.Lock()
	if c.launched {
		c.mu.Unlock()
		return ErrAlreadyLaunched
	}
	c.launched = true
	c.mu.Unlock()

	for _, coll := range c.collections {
		for _, item := range coll.Items {
			if c.progress != nil {
				fmt.Fprintf(c.progress, "Rendering: %s\n", item.Name)
			}
			t.Transform(ctx, item, c.completion(item))
		}
	}
	return nil
}

// completion returns the callback for one job. Repeated calls are recorded
// as violations and leave the pending count untouched.
func (c *Coordinator) completion(item Item) Completion {
	start := c.now()
	var once sync.Once
	return func(err error) {
		fired := false
		once.Do(func() {
			fired = true
			c.complete(Result{Item: item, Err: err, Duration: c.now().Sub(start)})
		})
		if !fired {
			c.mu.Lock()
			c.violations++
			c.mu.Unlock()
		}
	}
}

// complete records a result and decrements the pending count.
// Reaching zero closes Done; going below zero is a violation.
func (c *Coordinator) complete(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == 0 {
		c.violations++
		return
	}

	c.results = append(c.results, res)
	c.pending--
	if c.pending == 0 {
		close(c.done)
	}
}

// Wait blocks until every job has completed or ctx is done.
// The report lists results in completion order.
//
// The report is a snapshot taken when Wait returns. A duplicate signal that
// arrives after Done has closed is still counted by Violations, and a later
// Wait reports it, but an earlier Wait result is not revised.
func (c *Coordinator) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-ctx.Done():
		return c.report(), ctx.Err()
	case <-c.done:
	}

	report := c.report()
	if report.Violations > 0 {
		return report, fmt.Errorf("%w: %d extra completion signal(s)", ErrDuplicateCompletion, report.Violations)
	}
	return report, nil
}

// report snapshots the results gathered so far.
func (c *Coordinator) report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &Report{
		Results:    append([]Result(nil), c.results...),
		Violations: c.violations,
	}
	for _, res := range r.Results {
		if res.Err != nil {
			r.Failed++
		} else {
			r.Succeeded++
		}
	}
	return r
}
