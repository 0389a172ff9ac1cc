package hikvision

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// EventStreamer is the device side of the monitor.
type EventStreamer interface {
	TestConnection(ctx context.Context) error
	StreamEvents(ctx context.Context, fn EventHandler) error
}

// Monitor keeps the alert stream open while monitoring is on, reconnecting
// with exponential backoff. Handler errors are logged and do not close the stream.
type Monitor struct {
	streamer EventStreamer
	handler  EventHandler

	connected atomic.Bool

	mu     sync.Mutex
	base   context.Context
	cancel context.CancelFunc
	done   chan struct{}

	newBackOff func() backoff.BackOff
}

func NewMonitor(streamer EventStreamer, handler EventHandler) *Monitor {
	return &Monitor{
		streamer: streamer,
		handler:  handler,
		base:     context.Background(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
	}
}

func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

func (m *Monitor) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Start begins monitoring. It is a no-op when already running.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(m.base)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
	slog.Info("Device monitoring started")
}

// Stop ends monitoring and waits for the stream to close.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.connected.Store(false)
	slog.Info("Device monitoring stopped")
}

// Run ties the monitor to ctx: monitoring optionally starts immediately and
// always stops when ctx is done.
func (m *Monitor) Run(ctx context.Context, autoStart bool) error {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()

	if autoStart {
		m.Start()
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	bo := m.newBackOff()
	handler := func(ctx context.Context, event AccessEvent) error {
		bo.Reset()
		if err := m.handler(ctx, event); err != nil {
			slog.Error("Failed to handle device event", "employee_id", event.EmployeeID, "error", err)
		}
		return nil
	}

	for {
		if ctx.Err() != nil {
			return
		}

		err := m.streamer.TestConnection(ctx)
		if err == nil {
			m.connected.Store(true)
			err = m.streamer.StreamEvents(ctx, handler)
		}
		m.connected.Store(false)

		if ctx.Err() != nil {
			return
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = 30 * time.Second
		}
		if err == nil {
			err = errors.New("alert stream closed")
		}
		slog.Warn("Device stream disconnected, reconnecting", "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
