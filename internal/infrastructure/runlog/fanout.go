package runlog

import (
	"context"

	"go.uber.org/zap"
)

// FanoutSink writes every entry to a primary sink and mirrors it,
// best-effort, to any number of secondaries. Secondary failures are
// logged as warnings and never propagate; primary failures do.
type FanoutSink struct {
	primary     Sink
	secondaries []Sink
	logger      *zap.Logger
}

// NewFanoutSink builds the fan-out over one primary and optional
// secondaries.
func NewFanoutSink(logger *zap.Logger, primary Sink, secondaries ...Sink) *FanoutSink {
	return &FanoutSink{primary: primary, secondaries: secondaries, logger: logger}
}

// Log appends one entry to every sink.
func (f *FanoutSink) Log(ctx context.Context, e Entry) error {
	for _, s := range f.secondaries {
		if err := s.Log(ctx, e); err != nil {
			f.logger.Warn("secondary run-log sink failed", zap.Error(err))
		}
	}
	return f.primary.Log(ctx, e)
}

// Flush flushes every sink.
func (f *FanoutSink) Flush(ctx context.Context) error {
	for _, s := range f.secondaries {
		if err := s.Flush(ctx); err != nil {
			f.logger.Warn("secondary run-log flush failed", zap.Error(err))
		}
	}
	return f.primary.Flush(ctx)
}

// Close closes every sink.
func (f *FanoutSink) Close() error {
	for _, s := range f.secondaries {
		if err := s.Close(); err != nil {
			f.logger.Warn("secondary run-log close failed", zap.Error(err))
		}
	}
	return f.primary.Close()
}
