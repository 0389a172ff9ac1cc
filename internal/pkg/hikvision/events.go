package hikvision

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Access controller sub-event types.
const (
	SubEventAccessGranted = 38
	SubEventAccessDenied  = 39
)

// Verification methods, as reported to the rest of the system.
const (
	VerifyFingerprint = "fingerprint"
	VerifyCard        = "card"
	VerifyFace        = "face"
	VerifyUnknown     = "unknown"
)

// AccessEvent is one access-controller reading from the alert stream.
type AccessEvent struct {
	EmployeeID   string
	Name         string
	Granted      bool
	Time         time.Time
	VerifyMethod string
	ReaderNo     int
}

// EventHandler receives access events in stream order.
type EventHandler func(ctx context.Context, event AccessEvent) error

type alert struct {
	DateTime              string `json:"dateTime"`
	EventType             string `json:"eventType"`
	AccessControllerEvent *struct {
		MajorEventType    int    `json:"majorEventType"`
		SubEventType      int    `json:"subEventType"`
		Name              string `json:"name"`
		EmployeeNoString  string `json:"employeeNoString"`
		CardReaderNo      int    `json:"cardReaderNo"`
		CurrentVerifyMode string `json:"currentVerifyMode"`
	} `json:"AccessControllerEvent"`
}

// DecodeVerifyMode maps the device's verify mode string to a method tag.
func DecodeVerifyMode(mode string) string {
	m := strings.ToLower(mode)
	switch {
	case strings.Contains(m, "fp") || strings.Contains(m, "finger"):
		return VerifyFingerprint
	case strings.Contains(m, "card"):
		return VerifyCard
	case strings.Contains(m, "face"):
		return VerifyFace
	default:
		return VerifyUnknown
	}
}

// parseAlert converts one JSON alert body. ok is false for alerts that are
// not granted or denied access-controller events.
func parseAlert(body []byte, now time.Time) (AccessEvent, bool, error) {
	var a alert
	if err := json.Unmarshal(body, &a); err != nil {
		return AccessEvent{}, false, fmt.Errorf("failed to decode alert: %w", err)
	}
	acs := a.AccessControllerEvent
	if acs == nil {
		return AccessEvent{}, false, nil
	}
	if acs.SubEventType != SubEventAccessGranted && acs.SubEventType != SubEventAccessDenied {
		return AccessEvent{}, false, nil
	}

	ts := now
	if a.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, a.DateTime); err == nil {
			ts = parsed
		}
	}

	readerNo := acs.CardReaderNo
	if readerNo == 0 {
		readerNo = 1
	}

	return AccessEvent{
		EmployeeID:   acs.EmployeeNoString,
		Name:         acs.Name,
		Granted:      acs.SubEventType == SubEventAccessGranted,
		Time:         ts,
		VerifyMethod: DecodeVerifyMode(acs.CurrentVerifyMode),
		ReaderNo:     readerNo,
	}, true, nil
}

// StreamEvents opens the alert stream and calls fn for every access event
// until the stream ends, ctx is cancelled or fn fails.
func (c *Client) StreamEvents(ctx context.Context, fn EventHandler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+alertStreamPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: alert stream returned %d", ErrBadStatus, resp.StatusCode)
	}

	return ReadAlerts(ctx, resp.Header.Get("Content-Type"), resp.Body, fn)
}

// ReadAlerts decodes an alert stream body. Multipart bodies are split on
// their boundary and only JSON parts are decoded; any other body is read as
// a sequence of JSON objects.
func ReadAlerts(ctx context.Context, contentType string, body io.Reader, fn EventHandler) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err == nil && strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" {
		return readMultipart(ctx, multipart.NewReader(body, params["boundary"]), fn)
	}
	return readJSONSequence(ctx, body, fn)
}

func readMultipart(ctx context.Context, mr *multipart.Reader, fn EventHandler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read alert part: %w", err)
		}

		ct := part.Header.Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "json") {
			_, _ = io.Copy(io.Discard, part)
			continue
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return fmt.Errorf("failed to read alert part: %w", err)
		}
		if err := handleAlert(ctx, bytes.TrimSpace(data), fn); err != nil {
			return err
		}
	}
}

func readJSONSequence(ctx context.Context, body io.Reader, fn EventHandler) error {
	dec := json.NewDecoder(bufio.NewReader(body))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read alert: %w", err)
		}
		if err := handleAlert(ctx, raw, fn); err != nil {
			return err
		}
	}
}

func handleAlert(ctx context.Context, data []byte, fn EventHandler) error {
	if len(data) == 0 {
		return nil
	}
	event, ok, err := parseAlert(data, time.Now())
	if err != nil {
		slog.Debug("Skipping undecodable alert", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return fn(ctx, event)
}
