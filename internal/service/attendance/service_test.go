package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	employeesvc "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	notificationsvc "github.com/cmlabs-hris/attendance-engine/internal/service/notification"
	presencesvc "github.com/cmlabs-hris/attendance-engine/internal/service/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type ingestFixture struct {
	svc        *IngestServiceImpl
	events     *memory.ClockEventRepository
	ledger     *presencesvc.Ledger
	dispatcher *notificationsvc.DispatcherImpl
	directory  *employeesvc.DirectoryServiceImpl
}

func newIngestFixture(t *testing.T) ingestFixture {
	t.Helper()
	now := time.Date(2024, 6, 3, 18, 0, 0, 0, testLoc)

	events := memory.NewClockEventRepository()
	ledger := presencesvc.NewLedger()
	employees := memory.NewEmployeeRepository(
		employee.Employee{EmployeeID: "E01", Name: "Ana", Active: true, SchedulePattern: schedule.PatternNormal},
		employee.Employee{EmployeeID: "E02", Name: "Luis", Active: true, SchedulePattern: schedule.PatternExtended},
	)
	directory := employeesvc.NewDirectoryService(employees, nil, ledger)
	dispatcher := notificationsvc.NewDispatcher(sse.NewHub(16))

	svc := NewIngestService(newTestNormalizer(now), events, directory, ledger, dispatcher, 10*time.Second)
	return ingestFixture{svc: svc, events: events, ledger: ledger, dispatcher: dispatcher, directory: directory}
}

func req(id, kind, ts string) attendance.IngestRequest {
	return attendance.IngestRequest{EmployeeID: id, Kind: kind, Timestamp: ts, VerifyMethod: "fingerprint"}
}

func TestIngest_AcceptsAndPublishes(t *testing.T) {
	f := newIngestFixture(t)
	_, ch, cleanup := f.dispatcher.Subscribe()
	defer cleanup()

	resp, err := f.svc.Ingest(context.Background(), req("E01", "entrada", "2024-06-03T08:05:00-06:00"))
	require.NoError(t, err)

	assert.True(t, resp.Resolved)
	assert.Equal(t, "Ana", resp.EmployeeName)
	assert.Equal(t, "inside", resp.Presence)
	assert.Equal(t, 1, f.events.Len())

	state, _ := f.ledger.Get("E01")
	assert.Equal(t, presence.StatusInside, state.Status)

	ev := <-ch
	payload := ev.Data.(notification.Payload)
	assert.Equal(t, notification.Payload{
		EmployeeID:   "E01",
		Name:         "Ana",
		EventType:    "entrada",
		VerifyMethod: "fingerprint",
		Timestamp:    "2024-06-03T08:05:00-06:00",
	}, payload)
}

func TestIngest_ValidationErrorTouchesNothing(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), req("E01", "lunch", "2024-06-03T08:05:00-06:00"))
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	assert.Zero(t, f.events.Len())
	state, _ := f.ledger.Get("E01")
	assert.Equal(t, presence.StatusUnknown, state.Status)
	assert.Zero(t, f.dispatcher.Stats().Published)
}

func TestIngest_StorageFailureLeavesLedgerUntouched(t *testing.T) {
	f := newIngestFixture(t)
	f.events.SetErr(errors.New("connection refused"))

	_, err := f.svc.Ingest(context.Background(), req("E01", "entrada", "2024-06-03T08:05:00-06:00"))
	assert.ErrorIs(t, err, attendance.ErrStorageUnavailable)

	state, _ := f.ledger.Get("E01")
	assert.Equal(t, presence.StatusUnknown, state.Status)
	assert.Zero(t, f.dispatcher.Stats().Published)

	// once storage is back the caller can retry
	f.events.SetErr(nil)
	_, err = f.svc.Ingest(context.Background(), req("E01", "entrada", "2024-06-03T08:05:00-06:00"))
	assert.NoError(t, err)
}

func TestIngest_UnknownEmployeeStoredNotApplied(t *testing.T) {
	f := newIngestFixture(t)

	resp, err := f.svc.Ingest(context.Background(), req("X99", "entrada", "2024-06-03T08:05:00-06:00"))
	require.NoError(t, err)

	assert.False(t, resp.Resolved)
	assert.Empty(t, resp.Presence)
	assert.Equal(t, 1, f.events.Len())
	_, tracked := f.ledger.Get("X99")
	assert.False(t, tracked)
	assert.Zero(t, f.dispatcher.Stats().Published)
}

func TestIngest_DuplicateWithinWindow(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, req("E01", "entrada", "2024-06-03T08:05:00-06:00"))
	require.NoError(t, err)

	_, err = f.svc.Ingest(ctx, req("E01", "salida", "2024-06-03T08:05:09-06:00"))
	assert.ErrorIs(t, err, attendance.ErrDuplicateEvent)
	assert.Equal(t, 1, f.events.Len())

	_, err = f.svc.Ingest(ctx, req("E01", "salida", "2024-06-03T08:05:10-06:00"))
	assert.NoError(t, err)
	assert.Equal(t, 2, f.events.Len())
}

func TestIngest_LastWriterWinsByArrival(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, req("E01", "entrada", "2024-06-03T12:00:00-06:00"))
	require.NoError(t, err)
	// a late delivery with an older timestamp still overwrites presence
	resp, err := f.svc.Ingest(ctx, req("E01", "salida", "2024-06-03T08:00:00-06:00"))
	require.NoError(t, err)
	assert.Equal(t, "outside", resp.Presence)
}

func TestIngest_ConcurrentEmployees(t *testing.T) {
	f := newIngestFixture(t)
	_, ch, cleanup := f.dispatcher.Subscribe()
	defer cleanup()

	var wg sync.WaitGroup
	for _, id := range []string{"E01", "E02"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Ingest(context.Background(), req(id, "entrada", "2024-06-03T07:00:00-06:00"))
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Len(t, ch, 2)
	snapshot := f.ledger.Snapshot()
	assert.Equal(t, presence.StatusInside, snapshot["E01"].Status)
	assert.Equal(t, presence.StatusInside, snapshot["E02"].Status)
}

func TestIngest_UnknownEmployeesShareBoundedLocks(t *testing.T) {
	f := newIngestFixture(t)
	assert.Same(t, f.svc.lockStripe("X0001"), f.svc.lockStripe("X0001"))

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("X%04d", i)
			resp, err := f.svc.Ingest(context.Background(), req(id, "entrada", "2024-06-03T07:00:00-06:00"))
			assert.NoError(t, err)
			assert.False(t, resp.Resolved)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, f.events.Len())
	assert.Len(t, f.svc.employeeLocks[:], lockStripes)
}

func TestIngest_NotificationCarriesCallerSpan(t *testing.T) {
	f := newIngestFixture(t)
	_, ch, cleanup := f.dispatcher.Subscribe()
	defer cleanup()

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	_, err := f.svc.Ingest(ctx, req("E01", "entrada", "2024-06-03T08:05:00-06:00"))
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, sc.TraceID(), ev.Trace.TraceID())
	assert.Equal(t, sc.SpanID(), ev.Trace.SpanID())
}
