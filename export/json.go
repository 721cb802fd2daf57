package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

var _ Exporter = (*JSONExporter)(nil)

// JSONExporter writes a snapshot as one JSON document to a writer.
type JSONExporter struct {
	w      io.Writer
	indent bool
}

// JSONOption configures a JSONExporter.
type JSONOption func(*JSONExporter)

// WithIndent enables pretty-printed output.
func WithIndent() JSONOption {
	return func(e *JSONExporter) { e.indent = true }
}

// NewJSONExporter creates an exporter writing to w.
func NewJSONExporter(w io.Writer, opts ...JSONOption) *JSONExporter {
	e := &JSONExporter{w: w}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes snap to the underlying writer.
func (e *JSONExporter) Export(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(e.w)
	if e.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
