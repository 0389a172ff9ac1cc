package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// SQSClient sendMessage interface based on aws sdk
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSForwarder is a dispatcher subscriber that copies every notification to
// an SQS queue. It is subject to the same drop policy as any other subscriber.
type SQSForwarder struct {
	client     SQSClient
	queueURL   string
	dispatcher notification.Dispatcher
}

func NewSQSForwarder(client SQSClient, queueURL string, dispatcher notification.Dispatcher) *SQSForwarder {
	return &SQSForwarder{
		client:     client,
		queueURL:   queueURL,
		dispatcher: dispatcher,
	}
}

// Run forwards notifications until ctx is done. Send failures are logged
// and never reach the ingestion path.
func (f *SQSForwarder) Run(ctx context.Context) error {
	id, events, cleanup := f.dispatcher.Subscribe()
	defer cleanup()

	slog.Info("SQS forwarder started", "subscriber_id", id, "queue_url", f.queueURL)
	for {
		select {
		case <-ctx.Done():
			slog.Info("SQS forwarder stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := f.send(ctx, event); err != nil {
				slog.Error("Failed to forward notification", "event", event.Event, "error", err)
			}
		}
	}
}

func (f *SQSForwarder) send(ctx context.Context, event sse.Event) error {
	body, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"EventType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.Event),
		},
		"NotificationID": {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.ID),
		},
	}
	// the producing request's span, not the forwarder's own ctx
	telemetry.InjectTraceContext(trace.ContextWithSpanContext(ctx, event.Trace), attrs)

	_, err = f.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(f.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to notification queue: %w", err)
	}
	return nil
}
