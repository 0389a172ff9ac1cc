package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type presenceSnapshotRepositoryImpl struct {
	db *database.DB
}

func NewPresenceSnapshotRepository(db *database.DB) presence.SnapshotRepository {
	return &presenceSnapshotRepositoryImpl{db: db}
}

// SaveSnapshot replaces the stored snapshot in a single transaction.
func (r *presenceSnapshotRepositoryImpl) SaveSnapshot(ctx context.Context, states map[string]presence.PresenceState) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `DELETE FROM presence_snapshot`); err != nil {
			return fmt.Errorf("failed to clear presence snapshot: %w", err)
		}
		if len(states) == 0 {
			return nil
		}

		tx, ok := q.(pgx.Tx)
		if !ok {
			return fmt.Errorf("presence snapshot requires a transaction")
		}

		rows := make([][]any, 0, len(states))
		for id, s := range states {
			var (
				lastTime *time.Time
				lastKind *string
			)
			if !s.LastEventTime.IsZero() {
				t := s.LastEventTime
				lastTime = &t
			}
			if s.LastEventKind != "" {
				k := string(s.LastEventKind)
				lastKind = &k
			}
			rows = append(rows, []any{id, string(s.Status), lastTime, lastKind})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"presence_snapshot"},
			[]string{"employee_id", "status", "last_event_time", "last_event_kind"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to write presence snapshot: %w", err)
		}
		return nil
	})
}

// LoadSnapshot implements presence.SnapshotRepository.
func (r *presenceSnapshotRepositoryImpl) LoadSnapshot(ctx context.Context) (map[string]presence.PresenceState, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT employee_id, status, last_event_time, last_event_kind FROM presence_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("failed to load presence snapshot: %w", err)
	}
	defer rows.Close()

	states := make(map[string]presence.PresenceState)
	for rows.Next() {
		var (
			id, status string
			lastTime   *time.Time
			lastKind   *string
		)
		if err := rows.Scan(&id, &status, &lastTime, &lastKind); err != nil {
			return nil, fmt.Errorf("failed to scan presence snapshot: %w", err)
		}
		s := presence.PresenceState{Status: presence.Status(status)}
		if lastTime != nil {
			s.LastEventTime = *lastTime
		}
		if lastKind != nil {
			s.LastEventKind = attendance.Kind(*lastKind)
		}
		states[id] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}
