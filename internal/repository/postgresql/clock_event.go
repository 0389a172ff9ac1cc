package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type clockEventRepositoryImpl struct {
	db *database.DB
}

func NewClockEventRepository(db *database.DB) attendance.EventRepository {
	return &clockEventRepositoryImpl{db: db}
}

// Save implements attendance.EventRepository.
func (r *clockEventRepositoryImpl) Save(ctx context.Context, event attendance.ClockEvent) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clock_events (sequence_no, employee_id, kind, event_time, verify_method, reader_no, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		int64(event.SequenceNo),
		event.EmployeeID,
		string(event.Kind),
		event.Timestamp,
		event.VerifyMethod,
		event.ReaderNo,
		event.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert clock event %d: %w", event.SequenceNo, err)
	}
	return nil
}

// ListByRange implements attendance.EventRepository.
func (r *clockEventRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time) ([]attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sequence_no, employee_id, kind, event_time, verify_method, reader_no, recorded_at
		FROM clock_events
		WHERE event_time >= $1 AND event_time < $2
		ORDER BY event_time ASC, sequence_no ASC
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock events: %w", err)
	}
	return scanClockEvents(rows)
}

// ListRecent implements attendance.EventRepository.
func (r *clockEventRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]attendance.ClockEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sequence_no, employee_id, kind, event_time, verify_method, reader_no, recorded_at
		FROM clock_events
		ORDER BY event_time DESC, sequence_no DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent clock events: %w", err)
	}
	return scanClockEvents(rows)
}

// CountSince implements attendance.EventRepository.
func (r *clockEventRepositoryImpl) CountSince(ctx context.Context, since time.Time) (int, int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COUNT(DISTINCT employee_id)
		FROM clock_events
		WHERE event_time >= $1
	`

	var total, unique int
	if err := q.QueryRow(ctx, query, since).Scan(&total, &unique); err != nil {
		return 0, 0, fmt.Errorf("failed to count clock events: %w", err)
	}
	return total, unique, nil
}

// MaxSequence implements attendance.EventRepository.
func (r *clockEventRepositoryImpl) MaxSequence(ctx context.Context) (uint64, error) {
	q := GetQuerier(ctx, r.db)

	var highest int64
	if err := q.QueryRow(ctx, `SELECT COALESCE(MAX(sequence_no), 0) FROM clock_events`).Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to read max sequence: %w", err)
	}
	return uint64(highest), nil
}

func scanClockEvents(rows pgx.Rows) ([]attendance.ClockEvent, error) {
	defer rows.Close()

	var events []attendance.ClockEvent
	for rows.Next() {
		var (
			e    attendance.ClockEvent
			seq  int64
			kind string
		)
		if err := rows.Scan(&seq, &e.EmployeeID, &kind, &e.Timestamp, &e.VerifyMethod, &e.ReaderNo, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan clock event: %w", err)
		}
		e.SequenceNo = uint64(seq)
		e.Kind = attendance.Kind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
