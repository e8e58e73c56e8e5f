package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("reload called without a deadline")
	}
	r.calls.Add(1)
	return r.err
}

func TestSchedulerReloadsPeriodically(t *testing.T) {
	r := &countingReloader{}
	s := New(50*time.Millisecond, r, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	r := &countingReloader{err: errors.New("source down")}
	s := New(50*time.Millisecond, r, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerDisabled(t *testing.T) {
	r := &countingReloader{}
	s := New(0, r, nil)
	require.NoError(t, s.Start())
	s.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}
