// Package binding turns contract gateway calls into stateful operations:
// each operation tracks whether it is in flight, its last error and its
// last result, resolves the session at call time, and discards results
// that arrive after the session changed or the caller went away.
package binding

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/session"
	"github.com/Rampop01/spectralpay/pkg/logger"
)

// State is a snapshot of an operation.
type State[Out any] struct {
	InFlight  bool
	Err       error
	Result    Out
	HasResult bool
}

// runFunc performs the operation for a resolved session.
type runFunc[In, Out any] func(ctx context.Context, sess *session.Session, in In) (Out, error)

// Operation is one invocable action. It allows a single call at a time; a
// second concurrent call fails with BUSY instead of queueing.
type Operation[In, Out any] struct {
	name   string
	write  bool
	deps   *Deps
	run    runFunc[In, Out]
	commit func(in In, out Out)

	mu    sync.Mutex
	state State[Out]
}

func newOperation[In, Out any](deps *Deps, name string, write bool, run runFunc[In, Out]) *Operation[In, Out] {
	return &Operation[In, Out]{name: name, write: write, deps: deps, run: run}
}

// onCommit registers fn to run after a result is accepted.
func (o *Operation[In, Out]) onCommit(fn func(in In, out Out)) *Operation[In, Out] {
	o.commit = fn
	return o
}

// Name returns the operation name.
func (o *Operation[In, Out]) Name() string {
	return o.name
}

// State returns a snapshot of the operation. The last result survives
// later failures; check Err to detect them.
func (o *Operation[In, Out]) State() State[Out] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Do runs the operation. No call is retried.
func (o *Operation[In, Out]) Do(ctx context.Context, in In) (out Out, err error) {
	o.mu.Lock()
	if o.state.InFlight {
		o.mu.Unlock()
		return out, errors.Newf(errors.KindBusy, o.name, "%s is already in progress", o.name)
	}
	o.state.InFlight = true
	o.state.Err = nil
	o.mu.Unlock()

	ctx = logger.ContextWithCallID(ctx, uuid.NewString())
	ctx = logger.ContextWithOperation(ctx, o.name)
	o.deps.Metrics.OperationStarted(o.name)

	defer func() {
		if r := recover(); r != nil {
			var zero Out
			out, err = zero, errors.New(errors.KindInternal, o.name, fmt.Sprintf("panic: %v", r))
		}
		o.finish(ctx, in, out, err)
	}()

	return o.execute(ctx, in)
}

func (o *Operation[In, Out]) execute(ctx context.Context, in In) (Out, error) {
	var zero Out

	sess, err := o.deps.Sessions.Current()
	if err != nil {
		return zero, errors.Classify(o.name, err)
	}
	if o.write {
		if err := session.RequireNetwork(sess, o.deps.Network); err != nil {
			return zero, errors.Classify(o.name, err)
		}
	}
	ctx = logger.ContextWithAccount(ctx, sess.Address())

	out, err := o.run(ctx, sess, in)

	if ctx.Err() != nil {
		return zero, errors.Wrap(errors.KindAbandoned, o.name, ctx.Err())
	}
	if !o.deps.Sessions.IsCurrent(sess) {
		return zero, errors.New(errors.KindAbandoned, o.name, "session changed while the call was in flight")
	}
	if err != nil {
		return zero, errors.Classify(o.name, err)
	}
	return out, nil
}

func (o *Operation[In, Out]) finish(ctx context.Context, in In, out Out, err error) {
	if err == nil && o.commit != nil {
		o.runCommit(ctx, in, out)
	}

	o.mu.Lock()
	o.state.InFlight = false
	if err != nil {
		o.state.Err = err
	} else {
		o.state.Result = out
		o.state.HasResult = true
	}
	o.mu.Unlock()

	kind := "ok"
	if err != nil {
		kind = string(errors.KindOf(err))
	}
	o.deps.Metrics.OperationFinished(o.name, kind)

	entry := o.deps.Logger.WithContext(ctx).WithField("kind", kind)
	switch {
	case err == nil:
		entry.Debug("operation finished")
	case errors.IsKind(err, errors.KindAbandoned):
		entry.WithError(err).Info("operation result discarded")
	default:
		entry.WithError(err).Warn("operation failed")
	}
}

// runCommit applies the commit hook. A panicking hook is logged; the call
// still succeeds.
func (o *Operation[In, Out]) runCommit(ctx context.Context, in In, out Out) {
	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.WithContext(ctx).WithField("panic", fmt.Sprint(r)).Error("commit hook panicked")
		}
	}()
	o.commit(in, out)
}
