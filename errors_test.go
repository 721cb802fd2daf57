package indugraph

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	e := &Error{Op: "Session.CreateTarget", Kind: KindValidation, Err: ErrPinSuffix}
	assert.Contains(t, e.Error(), "Session.CreateTarget")
	assert.Contains(t, e.Error(), KindValidation)
	assert.Contains(t, e.Error(), ErrPinSuffix.Error())

	bare := &Error{Op: "Op", Kind: KindParse}
	assert.Contains(t, bare.Error(), KindParse)

	withCtx := e.WithContext(map[string]any{"raw": "=A1:1"})
	assert.Contains(t, withCtx.Error(), "=A1:1")
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("wrapped: %w", ErrUnparsableTag)
	e := newParseError("Session.CreateTag", cause)

	assert.ErrorIs(t, e, ErrUnparsableTag)
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestErrorIsMatchesKind(t *testing.T) {
	e := newValidationError("Session.CreatePin", ErrEmptyPinChain)

	assert.ErrorIs(t, e, &Error{Kind: KindValidation})
	assert.ErrorIs(t, e, &Error{Kind: KindValidation, Op: "Session.CreatePin"})
	assert.NotErrorIs(t, e, &Error{Kind: KindParse})
	assert.NotErrorIs(t, e, &Error{Kind: KindValidation, Op: "Session.CreateLink"})
}

func TestWithContextCopies(t *testing.T) {
	e := newParseError("Op", ErrUnparsableTag)
	with := e.WithContext(map[string]any{"raw": "x"})

	assert.Nil(t, e.Context)
	assert.Equal(t, "x", with.Context["raw"])

	more := with.WithContext(map[string]any{"page": 3})
	assert.Equal(t, "x", more.Context["raw"])
	assert.Equal(t, 3, more.Context["page"])
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseWithLog(t *testing.T) {
	// Must not panic on nil closer, nil logger, or close failure.
	CloseWithLog(nil, slog.Default(), "nil")
	CloseWithLog(failingCloser{}, nil, "ok")
	CloseWithLog(failingCloser{err: errors.New("boom")}, slog.Default(), "failing")
}
