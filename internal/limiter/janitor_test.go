package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingPurger struct {
	calls  int
	retain time.Duration
	err    error
}

func (c *countingPurger) Purge(_ context.Context, olderThan time.Duration) (int64, error) {
	c.calls++
	c.retain = olderThan
	return 3, c.err
}

func TestJanitor_Scheduled(t *testing.T) {
	j, err := NewJanitor(&countingPurger{}, DefaultPurgeSpec, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, j.Cron.Entries(), 1)

	j.Start()
	j.Stop()
}

func TestJanitor_BadSpec(t *testing.T) {
	_, err := NewJanitor(&countingPurger{}, "every tuesday", time.Hour, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestJanitor_RunOnce(t *testing.T) {
	p := &countingPurger{}
	j, err := NewJanitor(p, DefaultPurgeSpec, 24*time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)

	j.RunOnce()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 24*time.Hour, p.retain)

	p.err = errors.New("db down")
	j.RunOnce()
	assert.Equal(t, 2, p.calls)
}
