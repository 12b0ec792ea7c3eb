// Package audit records order attempts to one or more append-only sinks.
package audit

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

// Recorder appends an audit record.
type Recorder interface {
	Record(ctx context.Context, record domain.AuditRecord) error
}

// Multi fans a record out to every sink. All sinks are attempted; their
// failures are combined into one error.
type Multi struct {
	sinks  []namedSink
	logger *zap.Logger
}

type namedSink struct {
	name string
	Recorder
}

// NewMulti creates an empty fan-out recorder.
func NewMulti(logger *zap.Logger) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{logger: logger}
}

// Add registers a sink under name. Nil sinks are ignored.
func (m *Multi) Add(name string, sink Recorder) *Multi {
	if sink != nil {
		m.sinks = append(m.sinks, namedSink{name: name, Recorder: sink})
	}
	return m
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Record implements Recorder.
func (m *Multi) Record(ctx context.Context, record domain.AuditRecord) error {
	var errs error
	for _, s := range m.sinks {
		if err := s.Record(ctx, record); err != nil {
			m.logger.Warn("audit sink failed", zap.String("sink", s.name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
