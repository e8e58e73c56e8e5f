// Package prediction obtains a short forecast for a price series. A remote
// caller is tried first; any failure lands on a canned local notice, so
// Predict always returns a Result.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/i474232898/marketscan/internal/common"
)

// DefaultTimeout bounds one remote attempt.
const DefaultTimeout = 15 * time.Second

// Caller is the remote forecasting capability: a structured prediction API
// or a free-text language model.
type Caller interface {
	Name() string
	Call(ctx context.Context, req Request) (Reply, error)
}

// ErrNotConfigured is reported when no Caller is set.
var ErrNotConfigured = errors.New("no prediction service configured")

// RemoteCallError describes a failed remote attempt. It never reaches
// Predict's callers as an error; it ends up in Result.Failure.
type RemoteCallError struct {
	Kind   FailureKind
	Caller string
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.Caller == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Caller, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

type state int

const (
	stateRemote state = iota
	stateFallback
	stateDone
)

// Resolver runs the remote-then-fallback flow.
type Resolver struct {
	caller  Caller
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds each remote attempt.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a Resolver around caller. A nil caller is allowed and
// always yields the fallback.
func NewResolver(caller Caller, opts ...Option) *Resolver {
	r := &Resolver{caller: caller, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = common.OrDiscard(r.logger)
	return r
}

// Configured reports whether a remote caller is set.
func (r *Resolver) Configured() bool { return r.caller != nil }

// CallerName returns the name of the remote caller, or "".
func (r *Resolver) CallerName() string {
	if r.caller == nil {
		return ""
	}
	return r.caller.Name()
}

// Predict returns a forecast for req. It never fails: remote errors are
// absorbed and only visible through Result.Provenance and Result.Failure.
func (r *Resolver) Predict(ctx context.Context, req Request) Result {
	var (
		res     Result
		failure *RemoteCallError
	)

	for st := stateRemote; st != stateDone; {
		switch st {
		case stateRemote:
			res, failure = r.attempt(ctx, req)
			if failure != nil {
				st = stateFallback
			} else {
				st = stateDone
			}
		case stateFallback:
			r.logger.Warn().
				Str("market", req.Market).
				Str("commodity", req.Commodity).
				Str("kind", string(failure.Kind)).
				Err(failure.Err).
				Msg("prediction: using local fallback")
			res = Fallback(req, failure)
			st = stateDone
		}
	}
	return res
}

func (r *Resolver) attempt(ctx context.Context, req Request) (res Result, failure *RemoteCallError) {
	if r.caller == nil {
		return Result{}, &RemoteCallError{Kind: FailureNotConfigured, Err: ErrNotConfigured}
	}
	name := r.caller.Name()

	defer func() {
		if p := recover(); p != nil {
			res, failure = Result{}, &RemoteCallError{Kind: FailureCall, Caller: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	reply, err := r.caller.Call(ctx, req)
	if err != nil {
		return Result{}, &RemoteCallError{Kind: FailureCall, Caller: name, Err: err}
	}

	res, err = interpret(reply)
	if err != nil {
		return Result{}, &RemoteCallError{Kind: FailureReply, Caller: name, Err: err}
	}

	r.logger.Debug().
		Str("caller", name).
		Str("provenance", string(res.Provenance)).
		Dur("latency", time.Since(start)).
		Msg("prediction: remote reply accepted")
	return res, nil
}

// interpret turns a Reply into a Result or explains why it cannot.
func interpret(reply Reply) (Result, error) {
	raw := reply.Raw
	if raw == "" {
		raw = reply.Text
	}

	if reply.Fields != nil {
		f, err := reply.Fields.normalize()
		if err != nil {
			return Result{}, err
		}
		return Result{Fields: f, Provenance: RemoteStructured, RawResponse: raw}, nil
	}

	if reply.Text == "" {
		return Result{}, ErrIncompleteReply
	}
	if f, ok := parseJSONText(reply.Text); ok {
		return Result{Fields: f, Provenance: RemoteStructured, RawResponse: raw}, nil
	}
	f, err := ParseText(reply.Text)
	if err != nil {
		return Result{}, err
	}
	return Result{Fields: f, Provenance: RemoteTextParsed, RawResponse: raw}, nil
}
