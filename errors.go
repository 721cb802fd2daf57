package indugraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common factory failure conditions. They can be matched
// with errors.Is through the structured *Error wrapper.
var (
	// ErrUnparsableTag indicates a raw identifier the grammar could not
	// tokenize. The offending fact should be skipped, not aborted on.
	ErrUnparsableTag = errors.New("unparsable tag")

	// ErrDependencyFailed indicates a creation request whose upstream
	// dependency (tag, target, pin) itself failed to resolve. No partial
	// entity is fabricated.
	ErrDependencyFailed = errors.New("dependent entity unresolved")

	// ErrPinSuffix indicates a target creation request whose raw tag still
	// carries an unparsed pin chain.
	ErrPinSuffix = errors.New("target tag carries a pin suffix")

	// ErrEmptyPinChain indicates a pin creation request with no chain
	// tokens.
	ErrEmptyPinChain = errors.New("empty pin chain")

	// ErrNotFound indicates a lookup for an entity the session never
	// created.
	ErrNotFound = errors.New("entity not found")
)

// Error kinds categorize factory failures. All of them are recoverable
// signals to the immediate caller; nothing in this module aborts a session.
const (
	// KindParse marks grammar failures on raw identifier strings.
	KindParse = "parse"

	// KindDependency marks failures propagated from an unresolved upstream
	// entity.
	KindDependency = "dependency"

	// KindValidation marks caller contract violations (empty chains,
	// unknown kinds, malformed input shapes).
	KindValidation = "validation"

	// KindNotFound marks lookups of unknown entities.
	KindNotFound = "not_found"

	// KindConfiguration marks invalid grammar or session configuration.
	KindConfiguration = "configuration"
)

// Error is the structured error type returned by Session operations. It
// wraps the underlying cause with the operation that failed and the failure
// category, and supports errors.Is / errors.As.
type Error struct {
	// Op is the operation that failed (e.g. "Session.CreateTarget").
	Op string

	// Kind categorizes the failure (KindParse, KindDependency, ...).
	Kind string

	// Err is the underlying cause.
	Err error

	// Context holds optional debugging detail (raw strings, page numbers).
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("indugraph: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("indugraph: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("indugraph: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// Is matches either another *Error by kind (and op, when set on the target)
// or the underlying cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the given context merged in.
func (e *Error) WithContext(ctx map[string]any) *Error {
	cp := *e
	if cp.Context == nil {
		cp.Context = make(map[string]any, len(ctx))
	}
	for k, v := range ctx {
		cp.Context[k] = v
	}
	return &cp
}

// newParseError wraps a grammar failure.
func newParseError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindParse, Err: err}
}

// newDependencyError wraps a failure propagated from an unresolved upstream
// entity.
func newDependencyError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindDependency, Err: err}
}

// newValidationError wraps a caller contract violation.
func newValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// newNotFoundError wraps a lookup miss.
func newNotFoundError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Err: err}
}

// CloseWithLog closes the resource and logs a failure at warning level.
// Intended for defer statements around exporter sinks.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource", "resource", name, "error", err)
	}
}
