package route

import (
	"context"
	"fmt"
	"log"

	"areasense/internal/metrics"
)

type Status string

const (
	StatusDispatched Status = "dispatched"
	StatusFailed     Status = "failed"
)

type Via string

const (
	ViaPrimary  Via = "primary"
	ViaFallback Via = "fallback"
)

type Attempt struct {
	Action int    `json:"action"`
	Via    Via    `json:"via"`
	URI    string `json:"uri"`
	Error  string `json:"error,omitempty"`
}

type Outcome struct {
	Status   Status    `json:"status"`
	Via      Via       `json:"via,omitempty"`
	Action   *Action   `json:"action,omitempty"`
	Attempts []Attempt `json:"attempts"`
}

// Err is nil for a dispatched outcome and wraps ErrDispatchFailed otherwise.
func (o Outcome) Err() error {
	if o.Status == StatusDispatched {
		return nil
	}
	if n := len(o.Attempts); n > 0 {
		return fmt.Errorf("%w: last attempt %s: %s", ErrDispatchFailed, o.Attempts[n-1].URI, o.Attempts[n-1].Error)
	}
	return ErrDispatchFailed
}

type execOptions struct {
	cont bool
}

type ExecuteOption func(*execOptions)

// Continue moves on to the next action when both URIs of an action fail.
func Continue() ExecuteOption {
	return func(o *execOptions) { o.cont = true }
}

// Execute tries the primary URI of the first action, then its fallback.
// Every URI is attempted at most once.
func (r *Router) Execute(ctx context.Context, actions []Action, opts ...ExecuteOption) Outcome {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := Outcome{Status: StatusFailed}
	tried := map[string]bool{}

	for i := range actions {
		a := actions[i]
		for _, step := range []struct {
			via Via
			uri string
		}{{ViaPrimary, a.Primary}, {ViaFallback, a.Fallback}} {
			if step.uri == "" || tried[step.uri] {
				continue
			}
			if err := ctx.Err(); err != nil {
				out.Attempts = append(out.Attempts, Attempt{Action: i, Via: step.via, URI: step.uri, Error: err.Error()})
				return out
			}
			tried[step.uri] = true

			err := r.Dispatcher.Dispatch(ctx, step.uri)
			at := Attempt{Action: i, Via: step.via, URI: step.uri}
			target := string(a.Kind)
			if a.Provider != "" {
				target = string(a.Provider)
			}
			if err != nil {
				at.Error = err.Error()
				out.Attempts = append(out.Attempts, at)
				metrics.DispatchAttempts.WithLabelValues(string(step.via), target, "error").Inc()
				log.Printf("WARN: [ActionRouter] %s %s failed: %v", target, step.via, err)
				continue
			}
			out.Attempts = append(out.Attempts, at)
			metrics.DispatchAttempts.WithLabelValues(string(step.via), target, "ok").Inc()

			out.Status = StatusDispatched
			out.Via = step.via
			out.Action = &a
			return out
		}
		if !o.cont {
			break
		}
	}
	return out
}
