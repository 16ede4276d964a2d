// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/api"
	"github.com/iatoolkit/iachat-tui/internal/config"
	"github.com/iatoolkit/iachat-tui/internal/payload"
)

// =============================================================================
// STATES AND INTENT ERRORS
// =============================================================================

// State is a position in the request lifecycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateInFlight
	StateCompleted
	StateCancelled
	StateTimedOut
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateInFlight:
		return "in_flight"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a request.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateTimedOut, StateFailed:
		return true
	default:
		return false
	}
}

// Busy reports whether a request is being prepared or is on the wire.
func (s State) Busy() bool {
	return s == StateSending || s == StateInFlight
}

var (
	// ErrEmptySubmission rejects a Send with neither question nor prompt.
	// This is resolved locally: no transition, no network call.
	ErrEmptySubmission = errors.New("type a question or select a prompt first")

	// ErrNoActiveRequest means Cancel found nothing to cancel.
	ErrNoActiveRequest = errors.New("no request in flight")
)

// =============================================================================
// INTENTS AND EVENTS
// =============================================================================

// FormState is the live form content handed to a Send intent. The
// controller snapshots it immediately; later mutation by the caller cannot
// reach an in-flight request.
type FormState struct {
	Question          string
	PromptName        string
	PromptDescription string
	FieldValue        string
	Attachments       []payload.Attachment
}

// Event is a state-change notification. Snapshot is the form state the
// request was built from; Outcome is set on terminal events only.
type Event struct {
	RequestID string
	State     State
	Snapshot  payload.Snapshot
	Outcome   *api.Outcome
}

// QueryClient is the transport the controller drives. *api.Client
// satisfies it; tests substitute fakes.
type QueryClient interface {
	Query(ctx context.Context, q *payload.Query) api.Outcome
}

// =============================================================================
// CONTROLLER
// =============================================================================

// pendingRequest is the state owned by one submission. The cancel func and
// the userCancelled flag are instance-scoped by construction: a new Send
// allocates a new pendingRequest, so signals can never cross requests.
type pendingRequest struct {
	id            string
	state         State
	cancel        context.CancelFunc
	userCancelled bool
	release       sync.Once
}

// Controller owns at most one pendingRequest. All fields behind mu; the
// transport call itself runs on a per-request goroutine.
type Controller struct {
	mu      sync.Mutex
	pending *pendingRequest

	client         QueryClient
	externalUserID string
	field          config.FieldConfig
	timeout        time.Duration
	maxAttachBytes int64

	notify func(Event)
	logger *zap.Logger
}

// Options configures a Controller.
type Options struct {
	Client         QueryClient
	ExternalUserID string
	Field          config.FieldConfig
	Timeout        time.Duration
	MaxAttachBytes int64

	// Notify receives every state-change event. It is always invoked on
	// the request's own goroutine, never on the Send caller's, so it may
	// block on delivery to a UI event loop.
	Notify func(Event)

	Logger *zap.Logger
}

// NewController creates a Controller in the Idle state.
func NewController(opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultQueryTimeoutSecs * time.Second
	}
	if opts.MaxAttachBytes <= 0 {
		opts.MaxAttachBytes = config.DefaultMaxAttachmentBytes
	}
	if opts.Notify == nil {
		opts.Notify = func(Event) {}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		client:         opts.Client,
		externalUserID: opts.ExternalUserID,
		field:          opts.Field,
		timeout:        opts.Timeout,
		maxAttachBytes: opts.MaxAttachBytes,
		notify:         opts.Notify,
		logger:         opts.Logger,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return StateIdle
	}
	return c.pending.state
}

// Reconfigure applies reloaded settings to subsequent requests. A request
// already in flight keeps the deadline and field config it started with.
func (c *Controller) Reconfigure(field config.FieldConfig, timeout time.Duration, maxAttachBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.field = field
	if timeout > 0 {
		c.timeout = timeout
	}
	if maxAttachBytes > 0 {
		c.maxAttachBytes = maxAttachBytes
	}
}

// =============================================================================
// INTENT HANDLING
// =============================================================================

// Send handles a Send intent. While a request is in flight the intent is
// reinterpreted as Cancel. An empty submission is rejected with
// ErrEmptySubmission and causes no transition.
func (c *Controller) Send(form FormState) error {
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		// Single-flight guard: the send affordance doubles as stop.
		return c.Cancel()
	}

	snap := payload.Capture(form.Question, form.PromptName, form.PromptDescription,
		form.FieldValue, c.externalUserID, form.Attachments)
	if snap.Empty() {
		c.mu.Unlock()
		return ErrEmptySubmission
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	req := &pendingRequest{
		id:     uuid.NewString(),
		state:  StateSending,
		cancel: cancel,
	}
	c.pending = req
	field := c.field
	maxBytes := c.maxAttachBytes
	c.mu.Unlock()

	c.logger.Info("request sending", zap.String("request_id", req.id))
	go c.run(ctx, req, snap, field, maxBytes)
	return nil
}

// Cancel handles a Cancel intent. It marks the pending request as
// user-cancelled and signals its token; the terminal transition arrives
// through the transport's single completion funnel.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	req := c.pending
	if req == nil {
		c.mu.Unlock()
		return ErrNoActiveRequest
	}
	req.userCancelled = true
	cancel := req.cancel
	c.mu.Unlock()

	c.logger.Info("request cancelled by user", zap.String("request_id", req.id))
	cancel()
	return nil
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// run drives one request from assembly to its terminal event. Every event,
// the Sending one included, is delivered from this goroutine: the UI calls
// Send from inside its own event loop, and delivering synchronously there
// would deadlock the loop against itself.
func (c *Controller) run(ctx context.Context, req *pendingRequest, snap payload.Snapshot,
	field config.FieldConfig, maxBytes int64) {
	// Guaranteed release on every exit path, including panics in the
	// transport or renderer callbacks.
	defer c.finishOnce(req)

	c.notify(Event{RequestID: req.id, State: StateSending, Snapshot: snap})

	q, err := payload.Assemble(ctx, snap, field, maxBytes)
	if err != nil {
		c.terminate(req, snap, c.assemblyOutcome(req, err))
		return
	}

	c.setState(req, StateInFlight)
	c.notify(Event{RequestID: req.id, State: StateInFlight, Snapshot: snap})

	out := c.client.Query(ctx, q)
	c.terminate(req, snap, c.attribute(req, out))
}

// assemblyOutcome classifies an assembly failure. Interruptions during the
// join barrier follow the same attribution as transport interruptions;
// anything else (an oversized attachment) is a local failure.
func (c *Controller) assemblyOutcome(req *pendingRequest, err error) api.Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.attribute(req, api.Outcome{
			Status:  api.StatusCancelled,
			Err:     api.ErrCancelled,
			Message: api.MsgCancelled,
		})
	}
	return api.Outcome{Status: api.StatusFailed, Err: err, Message: err.Error()}
}

// attribute resolves the cancel-versus-timeout race for interrupted
// outcomes. The userCancelled flag on this request instance is the source
// of truth: a manual cancel microseconds before the deadline is still a
// cancellation, and a deadline on a request the user never touched is
// still a timeout.
func (c *Controller) attribute(req *pendingRequest, out api.Outcome) api.Outcome {
	if out.Status != api.StatusCancelled && out.Status != api.StatusTimedOut {
		return out
	}
	c.mu.Lock()
	user := req.userCancelled
	c.mu.Unlock()
	if user {
		return api.Outcome{Status: api.StatusCancelled, Err: api.ErrCancelled, Message: api.MsgCancelled}
	}
	return api.Outcome{Status: api.StatusTimedOut, Err: api.ErrDeadline, Message: api.MsgTimedOut}
}

// terminate emits the terminal event and resets the controller to Idle.
func (c *Controller) terminate(req *pendingRequest, snap payload.Snapshot, out api.Outcome) {
	state := terminalState(out.Status)

	c.mu.Lock()
	req.state = state
	if c.pending == req {
		c.pending = nil
	}
	c.mu.Unlock()

	c.finishOnce(req)

	c.logger.Info("request finished",
		zap.String("request_id", req.id),
		zap.String("state", state.String()))
	c.notify(Event{RequestID: req.id, State: state, Snapshot: snap, Outcome: &out})
}

// finishOnce releases the request's cancellation token exactly once.
func (c *Controller) finishOnce(req *pendingRequest) {
	req.release.Do(func() {
		req.cancel()
		c.mu.Lock()
		if c.pending == req {
			c.pending = nil
		}
		c.mu.Unlock()
	})
}

func (c *Controller) setState(req *pendingRequest, s State) {
	c.mu.Lock()
	req.state = s
	c.mu.Unlock()
}

// terminalState maps a transport status to its lifecycle state.
func terminalState(s api.Status) State {
	switch s {
	case api.StatusCompleted:
		return StateCompleted
	case api.StatusCancelled:
		return StateCancelled
	case api.StatusTimedOut:
		return StateTimedOut
	default:
		return StateFailed
	}
}
