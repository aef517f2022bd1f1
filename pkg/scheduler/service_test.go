package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload() error {
	r.calls.Add(1)
	return r.err
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "@every 24h", cfg.Schedule)

	bad := &Config{Enabled: true, Schedule: "not a schedule"}
	assert.Error(t, bad.Validate())

	cron := &Config{Enabled: true, Schedule: "0 3 * * *"}
	assert.NoError(t, cron.Validate())
}

func TestDisabledSchedulerReturnsImmediately(t *testing.T) {
	reloader := &countingReloader{}
	svc, err := NewService(logrus.New(), &Config{Enabled: false}, reloader)
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, int32(0), reloader.calls.Load())
}

func TestSchedulerRefreshes(t *testing.T) {
	reloader := &countingReloader{}
	svc, err := NewService(logrus.New(), &Config{Enabled: true, Schedule: "@every 10ms"}, reloader)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err = svc.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, reloader.calls.Load())
}

func TestSchedulerKeepsRunningOnReloadError(t *testing.T) {
	reloader := &countingReloader{err: errors.New("file missing")}
	svc, err := NewService(logrus.New(), &Config{Enabled: true, Schedule: "@every 10ms"}, reloader)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = svc.Start(ctx)
	assert.GreaterOrEqual(t, reloader.calls.Load(), int32(2), "errors must not stop the loop")
}

func TestSchedulerStop(t *testing.T) {
	reloader := &countingReloader{}
	svc, err := NewService(logrus.New(), &Config{Enabled: true, Schedule: "@every 1h"}, reloader)
	require.NoError(t, err)

	stopped := make(chan error, 1)
	go func() { stopped <- svc.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, svc.Stop())

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
