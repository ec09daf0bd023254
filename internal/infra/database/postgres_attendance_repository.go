package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jimpitan_ronda/internal/domain/attendance"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Array
)

type PostgresAttendanceRepository struct {
	db       *sql.DB
	location *time.Location
}

func NewPostgresAttendanceRepository(db *sql.DB, loc *time.Location) *PostgresAttendanceRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresAttendanceRepository{db: db, location: loc}
}

// Upsert relies on the (member_id, duty_date) unique constraint: a second write for
// the same pair updates the existing row and keeps its id.
func (r *PostgresAttendanceRepository) Upsert(ctx context.Context, rec *attendance.Record) (uuid.UUID, error) {
	query := `INSERT INTO attendance_records (id, member_id, duty_date, status, check_in, check_out, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (member_id, duty_date) DO UPDATE
               SET status = EXCLUDED.status,
                   check_in = EXCLUDED.check_in,
                   check_out = EXCLUDED.check_out,
                   created_at = EXCLUDED.created_at
               RETURNING id`

	newID := uuid.New()
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		newID, rec.MemberID, dateParam(rec.Date), rec.RawStatus, rec.CheckIn, rec.CheckOut, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error upserting attendance record: %w", err)
	}
	rec.ID = id
	return id, nil
}

func (r *PostgresAttendanceRepository) scanRecords(rows *sql.Rows) ([]*attendance.Record, error) {
	records := make([]*attendance.Record, 0)
	for rows.Next() {
		rec := &attendance.Record{}
		if err := rows.Scan(&rec.ID, &rec.MemberID, &rec.Date, &rec.RawStatus, &rec.CheckIn, &rec.CheckOut, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning attendance record: %w", err)
		}
		rec.Date = dateIn(rec.Date, r.location)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}
	return records, nil
}

func (r *PostgresAttendanceRepository) ListByDate(ctx context.Context, date time.Time, memberIDs []int64) ([]*attendance.Record, error) {
	if len(memberIDs) == 0 {
		return []*attendance.Record{}, nil
	}
	query := `SELECT id, member_id, duty_date, status, check_in, check_out, created_at
               FROM attendance_records
               WHERE duty_date = $1 AND member_id = ANY($2::bigint[])
               ORDER BY member_id, created_at`
	rows, err := r.db.QueryContext(ctx, query, dateParam(date), pq.Array(memberIDs))
	if err != nil {
		return nil, fmt.Errorf("error listing attendance by date: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

func (r *PostgresAttendanceRepository) ListByMemberAndDate(ctx context.Context, memberID int64, date time.Time) ([]*attendance.Record, error) {
	query := `SELECT id, member_id, duty_date, status, check_in, check_out, created_at
               FROM attendance_records
               WHERE member_id = $1 AND duty_date = $2
               ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, memberID, dateParam(date))
	if err != nil {
		return nil, fmt.Errorf("error listing attendance by member and date: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}
