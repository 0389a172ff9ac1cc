package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeSQSClient struct {
	mu     sync.Mutex
	inputs []*sqs.SendMessageInput
	err    error
}

func (c *fakeSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = append(c.inputs, params)
	if c.err != nil {
		return nil, c.err
	}
	return &sqs.SendMessageOutput{}, nil
}

func (c *fakeSQSClient) sent() []*sqs.SendMessageInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*sqs.SendMessageInput(nil), c.inputs...)
}

func runForwarder(t *testing.T, client *fakeSQSClient) (*DispatcherImpl, func()) {
	t.Helper()
	d := NewDispatcher(sse.NewHub(8))
	f := NewSQSForwarder(client, "http://localhost:4566/000000000000/attendance", d)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return d.Stats().Subscribers == 1 }, time.Second, 5*time.Millisecond)

	return d, func() {
		cancel()
		<-done
	}
}

func TestSQSForwarder_ForwardsNotifications(t *testing.T) {
	client := &fakeSQSClient{}
	d, stop := runForwarder(t, client)
	defer stop()

	d.Publish(context.Background(), sampleNotification("E01"))

	require.Eventually(t, func() bool { return len(client.sent()) == 1 }, time.Second, 5*time.Millisecond)
	input := client.sent()[0]
	assert.Equal(t, "http://localhost:4566/000000000000/attendance", *input.QueueUrl)
	assert.Contains(t, *input.MessageBody, `"employee_id":"E01"`)
	assert.Equal(t, "attendance_record", *input.MessageAttributes["EventType"].StringValue)
}

func TestSQSForwarder_SendErrorIsIsolated(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("queue unreachable")}
	d, stop := runForwarder(t, client)
	defer stop()

	d.Publish(context.Background(), sampleNotification("E01"))
	d.Publish(context.Background(), sampleNotification("E02"))

	// both attempted; the forwarder keeps running after a failure
	require.Eventually(t, func() bool { return len(client.sent()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestSQSForwarder_PropagatesPublisherTrace(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	client := &fakeSQSClient{}
	d, stop := runForwarder(t, client)
	defer stop()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	d.Publish(ctx, sampleNotification("E01"))

	require.Eventually(t, func() bool { return len(client.sent()) == 1 }, time.Second, 5*time.Millisecond)
	attrs := client.sent()[0].MessageAttributes

	parent, ok := attrs["traceparent"]
	require.True(t, ok, "traceparent attribute missing")
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", *parent.StringValue)
	assert.NotEmpty(t, *attrs["NotificationID"].StringValue)
}

func TestSQSForwarder_UntracedPublishHasNoTraceparent(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	client := &fakeSQSClient{}
	d, stop := runForwarder(t, client)
	defer stop()

	d.Publish(context.Background(), sampleNotification("E01"))

	require.Eventually(t, func() bool { return len(client.sent()) == 1 }, time.Second, 5*time.Millisecond)
	_, ok := client.sent()[0].MessageAttributes["traceparent"]
	assert.False(t, ok)
}
