package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/indugraph/indugraph"
)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for runner lifecycle messages.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHandler registers an event handler. May be given multiple times.
func WithHandler(h Handler) RunnerOption {
	return func(r *Runner) {
		if h != nil {
			r.handlers = append(r.handlers, h)
		}
	}
}

// Runner dispatches source documents to registered plugins and folds the
// results into a main session. Each source is processed against a fresh
// sub-session sharing the main session's separator grammar; the sub-session
// is merged into the main one only if the plugin finishes without error, so
// a failed source leaves no partial facts behind.
type Runner struct {
	session  *indugraph.Session
	logger   *slog.Logger
	handlers []Handler

	mu      sync.Mutex
	plugins []Plugin
	states  map[string]State
}

// NewRunner creates a runner that folds results into session.
func NewRunner(session *indugraph.Session, opts ...RunnerOption) (*Runner, error) {
	if session == nil {
		return nil, indugraph.ErrDependencyFailed
	}
	r := &Runner{
		session: session,
		logger:  slog.Default(),
		states:  make(map[string]State),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register adds a plugin. Plugins are consulted in registration order; the
// first one whose Supports accepts a source processes it.
func (r *Runner) Register(p Plugin) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
}

// Plugins returns the registered plugins in registration order.
func (r *Runner) Plugins() []Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// StateOf returns the lifecycle state of a source seen by Run.
func (r *Runner) StateOf(source string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[source]; ok {
		return st
	}
	return StateIdle
}

// Run processes each source with the first supporting plugin. Sources are
// independent: a failure or an unsupported source is reported through
// events and the returned slice, and the remaining sources still run.
// Cancelling ctx stops before the next source starts.
func (r *Runner) Run(ctx context.Context, sources ...string) []error {
	var errs []error
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			r.setState(source, StateStopped)
			errs = append(errs, err)
			continue
		}
		if err := r.runOne(ctx, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (r *Runner) runOne(ctx context.Context, source string) error {
	p := r.pluginFor(source)
	if p == nil {
		r.logger.Warn("no plugin supports source", "source", source)
		r.setState(source, StateIdle)
		r.emit(Event{Type: EventSkipped, Source: source, State: StateIdle})
		return nil
	}

	sub, err := indugraph.NewSession(r.session.Config(),
		indugraph.WithLogger(r.logger),
		indugraph.WithSource(source),
	)
	if err != nil {
		r.setState(source, StateFailed)
		r.emit(Event{Type: EventFailed, Plugin: p.Name(), Source: source, State: StateFailed, Err: err})
		return err
	}

	r.setState(source, StateRunning)
	r.emit(Event{Type: EventStarted, Plugin: p.Name(), Source: source, SessionID: sub.ID(), State: StateRunning})
	r.logger.Info("processing source", "plugin", p.Name(), "source", source)

	if err := p.Process(ctx, source, sub); err != nil {
		r.logger.Error("plugin failed", "plugin", p.Name(), "source", source, "error", err)
		r.setState(source, StateFailed)
		r.emit(Event{Type: EventFailed, Plugin: p.Name(), Source: source, SessionID: sub.ID(), State: StateFailed, Err: err})
		return err
	}

	if err := r.session.Merge(sub); err != nil {
		r.setState(source, StateFailed)
		r.emit(Event{Type: EventFailed, Plugin: p.Name(), Source: source, SessionID: sub.ID(), State: StateFailed, Err: err})
		return err
	}

	r.setState(source, StateCompleted)
	r.emit(Event{Type: EventCompleted, Plugin: p.Name(), Source: source, SessionID: sub.ID(), State: StateCompleted})
	return nil
}

func (r *Runner) pluginFor(source string) Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plugins {
		if p.Supports(source) {
			return p
		}
	}
	return nil
}

func (r *Runner) setState(source string, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[source] = st
}

func (r *Runner) emit(ev Event) {
	for _, h := range r.handlers {
		h(ev)
	}
}
