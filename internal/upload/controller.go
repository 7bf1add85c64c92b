package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Outcome is the settled result of one upload attempt. Status is either
// StatusSuccess or StatusError; the transport never fails any other way.
type Outcome[TRes, TErr any] struct {
	Status Status
	Result TRes
	Err    TErr
}

// Succeeded builds a success outcome.
func Succeeded[TRes, TErr any](result TRes) Outcome[TRes, TErr] {
	return Outcome[TRes, TErr]{Status: StatusSuccess, Result: result}
}

// Failed builds an error outcome.
func Failed[TRes, TErr any](err TErr) Outcome[TRes, TErr] {
	return Outcome[TRes, TErr]{Status: StatusError, Err: err}
}

// UploadFunc is the injected upload transport. It must not panic; failures
// are reported through the returned outcome.
type UploadFunc[TRes, TErr any] func(ctx context.Context, f File) Outcome[TRes, TErr]

// Config parameterizes a Controller.
//
// UploadFile is required. ShapeUploadError is required unless TErr is
// string, in which case an identity shaper is installed by default. A
// MaxRetryCount of zero or less means unlimited retries.
type Config[TRes, TErr any] struct {
	UploadFile        UploadFunc[TRes, TErr]
	OnRemoveFile      func(ctx context.Context, id string) error
	OnFileUploaded    func(result TRes)
	OnFileUploadError func(err TErr)
	OnAllUploaded     func()
	OnRootError       func(message string)
	ShapeUploadError  func(err TErr) string
	MaxRetryCount     int
	AutoRetry         bool
	Limits            Limits
	ShiftOnMaxFiles   bool
}

// Controller coordinates dropped batches: it validates files against the
// configured limits, tracks accepted files in a StatusStore, runs the
// uploads for a batch concurrently, and exposes retry and removal.
//
// The controller never returns errors from its flows; every failure
// surfaces as stored state plus observer callbacks.
type Controller[TRes, TErr any] struct {
	cfg   Config[TRes, TErr]
	store *StatusStore[TRes, TErr]

	rootMu  sync.Mutex
	rootErr string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController validates cfg and builds a controller whose lifetime is
// bound to parent. Tearing down the parent context (or calling Close)
// stops in-flight batches from dispatching into a dead consumer.
func NewController[TRes, TErr any](parent context.Context, cfg Config[TRes, TErr]) (*Controller[TRes, TErr], error) {
	if cfg.UploadFile == nil {
		return nil, fmt.Errorf("upload controller: UploadFile is required")
	}
	if cfg.ShapeUploadError == nil {
		var zero TErr
		if _, ok := any(zero).(string); !ok {
			return nil, fmt.Errorf("upload controller: ShapeUploadError is required for non-string error types")
		}
		cfg.ShapeUploadError = func(err TErr) string { return any(err).(string) }
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Controller[TRes, TErr]{
		cfg:    cfg,
		store:  NewStatusStore[TRes, TErr](),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Close cancels the controller's lifetime context. In-flight uploads see
// the cancellation through their transport context.
func (c *Controller[TRes, TErr]) Close() {
	c.cancel()
}

// Drop processes one batch of files. Files failing type or size limits are
// rejected and their distinct reasons aggregated into the root error; the
// remainder is admitted against the remaining capacity and uploaded
// concurrently. Drop returns after every upload in the batch has settled
// and OnAllUploaded has fired.
func (c *Controller[TRes, TErr]) Drop(ctx context.Context, files []File) {
	accepted := make([]File, 0, len(files))
	var rejections []RejectionCode
	for _, f := range files {
		if code, ok := c.cfg.Limits.match(f); !ok {
			rejections = append(rejections, code)
		} else {
			accepted = append(accepted, f)
		}
	}

	if len(accepted) > 0 {
		c.dropAccepted(ctx, accepted)
	}
	if len(rejections) > 0 {
		c.setRootError(rootErrorMessage(distinctCodes(rejections), c.cfg.Limits))
	}
}

func (c *Controller[TRes, TErr]) dropAccepted(ctx context.Context, batch []File) {
	c.setRootError("")

	maxFiles := c.cfg.Limits.MaxFiles
	if maxFiles > 0 {
		remaining := maxFiles - c.store.Len()
		if remaining < 0 {
			remaining = 0
		}
		if len(batch) > remaining {
			if !c.cfg.ShiftOnMaxFiles {
				c.setRootError(rootErrorMessage([]RejectionCode{CodeTooManyFiles}, c.cfg.Limits))
			}
		}
		// Without the shift policy the batch is always sliced to the
		// remaining capacity, whether or not the root error was raised.
		if !c.cfg.ShiftOnMaxFiles && len(batch) > remaining {
			batch = batch[:remaining]
		}
	}

	var g errgroup.Group
	for _, f := range batch {
		if c.cfg.ShiftOnMaxFiles && maxFiles > 0 && c.store.Len() >= maxFiles {
			if oldest, ok := c.store.Oldest(); ok {
				c.RemoveFile(ctx, oldest.ID)
			}
		}
		id := uuid.NewString()
		c.store.Add(id, f.Name, f)
		file := f
		g.Go(func() error {
			c.uploadOne(ctx, id, file, 0)
			return nil
		})
	}
	_ = g.Wait()

	if c.cfg.OnAllUploaded != nil {
		c.cfg.OnAllUploaded()
	}
}

// uploadOne runs one upload attempt and, on failure, either consumes the
// auto-retry budget or records the terminal error. attempts counts the
// auto-retries already spent for this invocation; a manual Retry starts a
// fresh budget.
func (c *Controller[TRes, TErr]) uploadOne(ctx context.Context, id string, f File, attempts int) {
	out := c.cfg.UploadFile(c.transportContext(ctx), f)

	if out.Status == StatusError {
		if c.cfg.AutoRetry && c.withinRetryBudget(attempts) {
			c.store.MarkPending(id)
			c.uploadOne(ctx, id, f, attempts+1)
			return
		}
		err := c.shapeError(out.Err)
		c.store.MarkError(id, err)
		if c.cfg.OnFileUploadError != nil {
			c.cfg.OnFileUploadError(err)
		}
		return
	}

	if c.cfg.OnFileUploaded != nil {
		c.cfg.OnFileUploaded(out.Result)
	}
	c.store.MarkSuccess(id, out.Result)
}

// transportContext prefers the caller's context but falls back to the
// controller lifetime so Close still reaches detached uploads.
func (c *Controller[TRes, TErr]) transportContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return c.ctx
}

func (c *Controller[TRes, TErr]) withinRetryBudget(attempts int) bool {
	return c.cfg.MaxRetryCount <= 0 || attempts < c.cfg.MaxRetryCount
}

// shapeError substitutes the shaped message only when the error type is
// itself string; richer error types keep their original value.
func (c *Controller[TRes, TErr]) shapeError(err TErr) TErr {
	shaped := c.cfg.ShapeUploadError(err)
	if _, ok := any(err).(string); ok {
		return any(shaped).(TErr)
	}
	return err
}

// Retry re-runs the upload for an errored entry. It is a no-op unless
// CanRetry reports true.
func (c *Controller[TRes, TErr]) Retry(ctx context.Context, id string) {
	if !c.CanRetry(id) {
		return
	}
	tf, ok := c.store.Get(id)
	if !ok {
		return
	}
	c.store.MarkPending(id)
	c.uploadOne(ctx, id, tf.File, 0)
}

// CanRetry reports whether the entry is errored with tries left.
func (c *Controller[TRes, TErr]) CanRetry(id string) bool {
	tf, ok := c.store.Get(id)
	if !ok || tf.Status != StatusError {
		return false
	}
	return c.cfg.MaxRetryCount <= 0 || tf.Tries < c.cfg.MaxRetryCount
}

// RemoveFile awaits the optional external removal hook, then removes the
// entry unconditionally. Hook failures are swallowed; removal is the
// caller's intent either way.
func (c *Controller[TRes, TErr]) RemoveFile(ctx context.Context, id string) {
	if c.cfg.OnRemoveFile != nil {
		_ = c.cfg.OnRemoveFile(c.transportContext(ctx), id)
	}
	c.store.Remove(id)
}

// Files returns a snapshot of the tracked files in insertion order.
func (c *Controller[TRes, TErr]) Files() []TrackedFile[TRes, TErr] {
	return c.store.Snapshot()
}

// IsInvalid reports whether any tracked file errored or a root error is
// set.
func (c *Controller[TRes, TErr]) IsInvalid() bool {
	return c.store.HasErrored() || c.RootError() != ""
}

// RootError returns the current root validation error, or "" when none is
// active.
func (c *Controller[TRes, TErr]) RootError() string {
	c.rootMu.Lock()
	defer c.rootMu.Unlock()
	return c.rootErr
}

// setRootError records the message (empty clears) and notifies the
// observer on every change, including the clear at the start of a batch.
func (c *Controller[TRes, TErr]) setRootError(message string) {
	c.rootMu.Lock()
	c.rootErr = message
	c.rootMu.Unlock()
	if c.cfg.OnRootError != nil {
		c.cfg.OnRootError(message)
	}
}
