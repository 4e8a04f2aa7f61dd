package route

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

var ErrNoHandler = errors.New("no handler for uri scheme")

// Dispatcher opens a URI in whatever is registered for its scheme.
type Dispatcher interface {
	Dispatch(ctx context.Context, uri string) error
}

type DispatchFunc func(ctx context.Context, uri string) error

func (f DispatchFunc) Dispatch(ctx context.Context, uri string) error { return f(ctx, uri) }

// CommandDispatcher runs an opener command with the URI as its last
// argument, e.g. "xdg-open" or "adb shell am start -a android.intent.action.VIEW -d".
type CommandDispatcher struct {
	Command []string
}

func NewCommandDispatcher(command string) *CommandDispatcher {
	return &CommandDispatcher{Command: strings.Fields(command)}
}

func (d *CommandDispatcher) Dispatch(ctx context.Context, uri string) error {
	if len(d.Command) == 0 {
		return errors.New("no opener command configured")
	}
	args := append(append([]string(nil), d.Command[1:]...), uri)
	out, err := exec.CommandContext(ctx, d.Command[0], args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", d.Command[0], err, msg)
		}
		return fmt.Errorf("%s: %w", d.Command[0], err)
	}
	return nil
}

// SchemeFilter refuses URIs whose scheme is not in Schemes before handing
// the rest to Next. It models a device where some apps are not installed.
type SchemeFilter struct {
	Schemes map[string]bool
	Next    Dispatcher
}

func NewSchemeFilter(next Dispatcher, schemes ...string) *SchemeFilter {
	f := &SchemeFilter{Schemes: map[string]bool{}, Next: next}
	for _, s := range schemes {
		f.Schemes[strings.ToLower(s)] = true
	}
	return f
}

func (f *SchemeFilter) Dispatch(ctx context.Context, uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("parse %q: %w", uri, err)
	}
	if !f.Schemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: %s", ErrNoHandler, u.Scheme)
	}
	if f.Next == nil {
		return nil
	}
	return f.Next.Dispatch(ctx, uri)
}
