package shifts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const shiftColumns = "id, assignment_id, worker_id, shift_date, hours_worked, photo_uris, COALESCE(notes, ''), status, COALESCE(approved_by_id::text, ''), approved_at, created_at"

func (s *Store) CreateShift(ctx context.Context, sub Submission) (Submission, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO shift_submissions (assignment_id, worker_id, shift_date, hours_worked, photo_uris, notes, status)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)
    RETURNING id, created_at
  `, sub.AssignmentID, sub.WorkerID, sub.Date, sub.HoursWorked, sub.PhotoURIs, sub.Notes, sub.Status).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return Submission{}, apperr.Store("shifts.CreateShift", err)
	}
	return sub, nil
}

func (s *Store) GetShift(ctx context.Context, id string) (Submission, error) {
	return getShift(ctx, s.DB, "SELECT "+shiftColumns+" FROM shift_submissions WHERE id = $1", id)
}

func (s *Store) ListShifts(ctx context.Context, filter Filter) ([]Submission, error) {
	query := "SELECT " + shiftColumns + " FROM shift_submissions WHERE 1=1"
	var args []any
	if filter.WorkerID != "" {
		args = append(args, filter.WorkerID)
		query += fmt.Sprintf(" AND worker_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY shift_date DESC, created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("shifts.ListShifts", err)
	}
	defer rows.Close()

	out := make([]Submission, 0)
	for rows.Next() {
		sub, err := scanShift(rows)
		if err != nil {
			return nil, apperr.Store("shifts.ListShifts", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store("shifts.ListShifts", err)
	}
	return out, nil
}

func (s *Store) WithShiftTx(ctx context.Context, fn func(tx TxStore) error) error {
	return querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) LockShift(ctx context.Context, id string) (Submission, error) {
	return getShift(ctx, t.tx, "SELECT "+shiftColumns+" FROM shift_submissions WHERE id = $1 FOR UPDATE", id)
}

func (t *txStore) TransitionShift(ctx context.Context, id string, from, to Status, deciderID string, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
    UPDATE shift_submissions
    SET status = $1, approved_by_id = $2, approved_at = $3
    WHERE id = $4 AND status = $5
  `, to, deciderID, at, id, from)
	if err != nil {
		return false, apperr.Store("shifts.TransitionShift", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txStore) CreatePayroll(ctx context.Context, rec payroll.Record) (payroll.Record, error) {
	return payroll.Insert(ctx, t.tx, rec)
}

func getShift(ctx context.Context, q querier.Querier, query, id string) (Submission, error) {
	sub, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if querier.IsNoRows(err) {
			return Submission{}, apperr.New(apperr.KindNotFound, "shifts.GetShift", "shift not found")
		}
		return Submission{}, apperr.Store("shifts.GetShift", err)
	}
	return sub, nil
}

func scanShift(row pgx.Row) (Submission, error) {
	var sub Submission
	err := row.Scan(&sub.ID, &sub.AssignmentID, &sub.WorkerID, &sub.Date, &sub.HoursWorked, &sub.PhotoURIs, &sub.Notes, &sub.Status, &sub.ApprovedByID, &sub.ApprovedAt, &sub.CreatedAt)
	return sub, err
}
