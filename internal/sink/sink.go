// Package sink defines the per-frame measurement consumer interface and the
// CSV log writer.
package sink

import (
	"errors"
	"fmt"

	"github.com/banshee-data/laneguide/internal/clearance"
)

// Sink consumes one record per processed frame. Close flushes and releases
// the sink; it is called exactly once, on every exit path of a run.
type Sink interface {
	Record(r clearance.Record) error
	Close() error
}

// Multi fans a record out to several sinks in order.
type Multi []Sink

// Record stops at the first failing sink.
func (m Multi) Record(r clearance.Record) error {
	for i, s := range m {
		if err := s.Record(r); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins the errors.
func (m Multi) Close() error {
	var errs []error
	for i, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
