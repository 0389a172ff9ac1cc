package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/hikvision"
	presencesvc "github.com/cmlabs-hris/attendance-engine/internal/service/presence"
)

// DeviceBridge feeds access-controller readings into ingestion. Device
// readings carry no direction, so the kind is inferred from the ledger.
type DeviceBridge struct {
	ingest     attendance.IngestService
	ledger     *presencesvc.Ledger
	directory  employee.Directory
	dispatcher notification.Dispatcher
	loc        *time.Location
}

func NewDeviceBridge(
	ingest attendance.IngestService,
	ledger *presencesvc.Ledger,
	directory employee.Directory,
	dispatcher notification.Dispatcher,
	loc *time.Location,
) *DeviceBridge {
	return &DeviceBridge{
		ingest:     ingest,
		ledger:     ledger,
		directory:  directory,
		dispatcher: dispatcher,
		loc:        loc,
	}
}

// HandleAccessEvent implements hikvision.EventHandler.
func (b *DeviceBridge) HandleAccessEvent(ctx context.Context, ev hikvision.AccessEvent) error {
	if !ev.Granted {
		b.publishDenied(ctx, ev)
		return nil
	}
	if ev.EmployeeID == "" {
		slog.Warn("Device event without employee id", "reader_no", ev.ReaderNo)
		return nil
	}

	kind := b.ledger.NextKind(ev.EmployeeID, ev.Time.In(b.loc))
	_, err := b.ingest.Ingest(ctx, attendance.IngestRequest{
		EmployeeID:   ev.EmployeeID,
		Kind:         string(kind),
		Timestamp:    ev.Time.Format(time.RFC3339Nano),
		VerifyMethod: ev.VerifyMethod,
		ReaderNo:     ev.ReaderNo,
	})
	if errors.Is(err, attendance.ErrDuplicateEvent) {
		slog.Debug("Repeated device reading ignored", "employee_id", ev.EmployeeID)
		return nil
	}
	return err
}

func (b *DeviceBridge) publishDenied(ctx context.Context, ev hikvision.AccessEvent) {
	name := ev.Name
	if emp, err := b.directory.Lookup(ctx, ev.EmployeeID); err == nil {
		name = emp.Name
	}
	slog.Warn("Access denied", "employee_id", ev.EmployeeID, "reader_no", ev.ReaderNo)
	b.dispatcher.PublishAccessDenied(ctx, notification.AccessDenied{
		EmployeeID:   ev.EmployeeID,
		Name:         name,
		Timestamp:    ev.Time,
		VerifyMethod: ev.VerifyMethod,
		ReaderNo:     ev.ReaderNo,
	})
}
