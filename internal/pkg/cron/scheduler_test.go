package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPresence struct {
	resets  atomic.Int32
	flushes atomic.Int32
}

func (c *countingPresence) ResetDay(ctx context.Context) error {
	c.resets.Add(1)
	return nil
}

func (c *countingPresence) Flush(ctx context.Context) error {
	c.flushes.Add(1)
	return errors.New("storage down")
}

type countingDirectory struct {
	refreshes atomic.Int32
}

func (c *countingDirectory) RefreshJob(ctx context.Context) error {
	c.refreshes.Add(1)
	return nil
}

func TestScheduler_RunsJobsImmediately(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RepeatsOnInterval(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("fast", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_JobContextFollowsRun(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	var sawCancel atomic.Bool
	s.AddJob("blocking", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(errors.Is(ctx.Err(), context.Canceled))
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	<-started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation of the run context")
	}
	assert.True(t, sawCancel.Load())
}

func TestScheduler_RejectsSecondRun(t *testing.T) {
	s := NewScheduler()
	s.AddJob("tick", time.Hour, func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()
	assert.Eventually(t, func() bool { return s.Status()[0].Runs == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, s.Run(context.Background()), ErrSchedulerRunning)
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler()
	s.AddJob("slow", 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "job slow")
}

func TestRegisterJobs(t *testing.T) {
	presence := &countingPresence{}
	directory := &countingDirectory{}

	s := NewScheduler()
	RegisterJobs(s, presence, directory, time.Minute)
	assert.Len(t, s.jobs, 3)

	// a failing job does not stop the others
	err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "job flush_presence_snapshot: storage down")
	assert.Equal(t, int32(1), presence.resets.Load())
	assert.Equal(t, int32(1), presence.flushes.Load())
	assert.Equal(t, int32(1), directory.refreshes.Load())

	byName := make(map[string]JobStatus)
	for _, st := range s.Status() {
		byName[st.Name] = st
	}
	assert.Equal(t, 1, byName["flush_presence_snapshot"].Failures)
	assert.Equal(t, "storage down", byName["flush_presence_snapshot"].LastError)
	assert.Equal(t, 0, byName["reset_presence_day"].Failures)
	assert.Equal(t, 1, byName["refresh_directory"].Runs)
}

func TestRegisterJobs_SkipsDirectoryWithoutInterval(t *testing.T) {
	s := NewScheduler()
	RegisterJobs(s, &countingPresence{}, &countingDirectory{}, 0)
	assert.Len(t, s.jobs, 2)
}
