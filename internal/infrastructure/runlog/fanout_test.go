package runlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memorySink collects entries and can be told to fail.
type memorySink struct {
	entries  []Entry
	flushes  int
	logErr   error
	flushErr error
}

func (m *memorySink) Log(ctx context.Context, e Entry) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memorySink) Flush(ctx context.Context) error {
	m.flushes++
	return m.flushErr
}

func (m *memorySink) Close() error { return nil }

func TestFanoutSinkMirrorsEntries(t *testing.T) {
	primary := &memorySink{}
	secondary := &memorySink{}
	sink := NewFanoutSink(zap.NewNop(), primary, secondary)
	ctx := context.Background()

	require.NoError(t, sink.Log(ctx, Entry{Message: "one"}))
	require.NoError(t, sink.Flush(ctx))

	assert.Len(t, primary.entries, 1)
	assert.Len(t, secondary.entries, 1)
	assert.Equal(t, 1, primary.flushes)
	assert.Equal(t, 1, secondary.flushes)
}

func TestFanoutSinkSecondaryFailureIsSwallowed(t *testing.T) {
	primary := &memorySink{}
	secondary := &memorySink{logErr: errors.New("sheets down"), flushErr: errors.New("still down")}
	sink := NewFanoutSink(zap.NewNop(), primary, secondary)
	ctx := context.Background()

	require.NoError(t, sink.Log(ctx, Entry{Message: "one"}))
	require.NoError(t, sink.Flush(ctx))
	assert.Len(t, primary.entries, 1)
}

func TestFanoutSinkPrimaryFailurePropagates(t *testing.T) {
	primary := &memorySink{logErr: errors.New("disk full")}
	sink := NewFanoutSink(zap.NewNop(), primary)

	err := sink.Log(context.Background(), Entry{Message: "one"})
	assert.EqualError(t, err, "disk full")
}
