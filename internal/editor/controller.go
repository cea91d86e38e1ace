package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/coderunr/editor/internal/types"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when submitting to an unmounted controller
var ErrClosed = errors.New("editor: controller closed")

// Executor sends a request to the execution service
type Executor interface {
	Execute(ctx context.Context, request types.ExecutionRequest) (*types.ExecutionResult, error)
}

// Submission is one issued request
type Submission struct {
	Seq     uint64
	Request types.ExecutionRequest
}

// BuildRequest derives the request payload from a state snapshot. Stdin is
// left out entirely when the buffer is empty.
func BuildRequest(state State) types.ExecutionRequest {
	request := types.ExecutionRequest{
		Language: string(state.Language),
		Script:   state.Source,
	}
	if state.Stdin != "" {
		stdin := state.Stdin
		request.Stdin = &stdin
	}
	return request
}

// Controller owns the request/response lifecycle of executions.
// Every submission gets a sequence number; only the outcome of the latest one
// is applied to the view.
type Controller struct {
	exec   Executor
	logger *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	seq    uint64
	view   View
	closed bool

	// deliverMu orders notifications; delivered is the last view handed out
	deliverMu sync.Mutex
	delivered View
	observers observers[View]
}

// NewController creates an idle controller
func NewController(exec Executor, logger *logrus.Entry) *Controller {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		exec:   exec,
		logger: logger.WithField("component", "controller"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// View returns the current view
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Subscribe registers fn for every view transition
func (c *Controller) Subscribe(fn func(View)) func() {
	return c.observers.subscribe(fn)
}

// Begin moves the view to Submitting for a new request built from state.
// The error flag is cleared; the previous output stays visible.
func (c *Controller) Begin(state State) (Submission, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Submission{}, ErrClosed
	}
	c.seq++
	sub := Submission{Seq: c.seq, Request: BuildRequest(state)}
	c.view = View{
		Phase:  PhaseSubmitting,
		Seq:    sub.Seq,
		Output: c.view.Output,
	}
	v := c.view
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"seq":      sub.Seq,
		"language": sub.Request.Language,
	}).Debug("Execution submitted")

	c.deliver(v)
	return sub, nil
}

// Execute performs the network call for a submission. It does not touch the
// view; pass the outcome to Complete.
func (c *Controller) Execute(ctx context.Context, sub Submission) (*types.ExecutionResult, error) {
	return c.exec.Execute(ctx, sub.Request)
}

// Complete applies the outcome of submission seq. Outcomes of superseded
// submissions, and anything arriving after Close, are discarded and Complete
// returns false.
func (c *Controller) Complete(seq uint64, result *types.ExecutionResult, err error) bool {
	logger := c.logger.WithField("seq", seq)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		logger.Debug("Discarding outcome after close")
		return false
	}
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		logger.WithField("latest", latest).Debug("Discarding stale outcome")
		return false
	}

	switch {
	case err != nil:
		c.view = View{Phase: PhaseFailed, Seq: seq, Reason: err.Error()}
	case result == nil:
		c.view = View{Phase: PhaseFailed, Seq: seq, Reason: "empty response"}
	default:
		c.view = View{
			Phase:         PhaseSucceeded,
			Seq:           seq,
			Output:        result.Output + result.CompileMessage,
			HadDiagnostic: result.CompileMessage != "",
		}
	}
	v := c.view
	c.mu.Unlock()

	if err != nil {
		logger.WithError(err).Warn("Execution request failed")
	} else {
		logger.WithField("diagnostic", v.HadDiagnostic).Debug("Execution completed")
	}

	c.deliver(v)
	return true
}

// Run submits state and completes it asynchronously. The returned channel is
// closed once the outcome was applied or discarded.
func (c *Controller) Run(state State) <-chan struct{} {
	_, done := c.Submit(state)
	return done
}

// Submit is Run that also returns the sequence number of the submission, or
// zero when the controller is closed.
func (c *Controller) Submit(state State) (uint64, <-chan struct{}) {
	done := make(chan struct{})

	sub, err := c.Begin(state)
	if err != nil {
		close(done)
		return 0, done
	}

	go func() {
		defer close(done)
		result, err := c.Execute(c.ctx, sub)
		c.Complete(sub.Seq, result, err)
	}()
	return sub.Seq, done
}

// deliver hands v to observers unless a newer view already went out, so
// observers never end on a superseded outcome. Observers are called in order
// and must not submit synchronously.
func (c *Controller) deliver(v View) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	if v.Precedes(c.delivered) {
		c.logger.WithField("seq", v.Seq).Debug("Skipping superseded notification")
		return
	}
	c.delivered = v
	c.observers.notify(v)
}

// Close cancels in-flight requests and stops all further view updates
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.observers.clear()
}
