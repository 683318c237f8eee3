package payroll

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/platform/querier"
)

const shiftUniqueConstraint = "payrolls_shift_id_key"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const recordColumns = "id, shift_id, worker_id, week_start, week_end, hours_worked, full_day_rate, total_amount, created_at"

// Insert writes rec through q, which is normally the approval transaction.
// A second record for the same shift is reported as an invalid transition.
func Insert(ctx context.Context, q querier.Querier, rec Record) (Record, error) {
	err := q.QueryRow(ctx, `
    INSERT INTO payrolls (shift_id, worker_id, week_start, week_end, hours_worked, full_day_rate, total_amount)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at
  `, rec.ShiftID, rec.WorkerID, rec.WeekStart, rec.WeekEnd, rec.HoursWorked, rec.FullDayRate, rec.TotalAmount).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if querier.IsUniqueViolation(err, shiftUniqueConstraint) {
			return Record{}, apperr.New(apperr.KindInvalidStateTransition, "payroll.Insert", "payroll already exists for shift")
		}
		return Record{}, apperr.Store("payroll.Insert", err)
	}
	return rec, nil
}

const entryQuery = `
    SELECT p.id, p.shift_id, p.worker_id, p.week_start, p.week_end, p.hours_worked, p.full_day_rate, p.total_amount, p.created_at,
           COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(j.title, ''), COALESCE(j.location, '')
    FROM payrolls p
    LEFT JOIN users u ON u.id = p.worker_id
    LEFT JOIN shift_submissions s ON s.id = p.shift_id
    LEFT JOIN assignments a ON a.id = s.assignment_id
    LEFT JOIN jobs j ON j.id = a.job_id
    WHERE 1=1`

func (s *Store) ListPayroll(ctx context.Context, filter Filter) ([]Entry, error) {
	query := entryQuery
	var args []any
	if filter.WorkerID != "" {
		args = append(args, filter.WorkerID)
		query += fmt.Sprintf(" AND p.worker_id = $%d", len(args))
	}
	if filter.WeekStart != nil {
		args = append(args, *filter.WeekStart)
		query += fmt.Sprintf(" AND p.week_start = $%d", len(args))
	}
	query += " ORDER BY p.week_start DESC, p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("payroll.List", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.ShiftID, &e.WorkerID, &e.WeekStart, &e.WeekEnd, &e.HoursWorked, &e.FullDayRate, &e.TotalAmount, &e.CreatedAt,
			&e.WorkerName, &e.WorkerEmail, &e.JobTitle, &e.JobLocation)
		if err != nil {
			return nil, apperr.Store("payroll.List", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("payroll.List", err)
	}
	return out, nil
}

func (s *Store) GetPayroll(ctx context.Context, id string) (Record, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM payrolls WHERE id = $1", id)
	rec, err := scanRecord(row)
	if err != nil {
		if querier.IsNoRows(err) {
			return Record{}, apperr.New(apperr.KindNotFound, "payroll.Get", "payroll record not found")
		}
		return Record{}, apperr.Store("payroll.Get", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.ShiftID, &rec.WorkerID, &rec.WeekStart, &rec.WeekEnd, &rec.HoursWorked, &rec.FullDayRate, &rec.TotalAmount, &rec.CreatedAt)
	return rec, err
}
