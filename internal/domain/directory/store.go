package directory

import (
	"context"

	"github.com/jackc/pgx/v5"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const (
	quoteColumns      = "id, client_id, title, description, COALESCE(location, ''), COALESCE(contact_info, ''), status, created_at"
	jobColumns        = "id, COALESCE(quote_request_id::text, ''), manager_id, title, description, location, status, start_date, end_date, estimated_hours, created_at"
	assignmentColumns = "id, job_id, worker_id, week_start, week_end, COALESCE(notes, ''), created_at"
)

func (s *Store) CreateQuote(ctx context.Context, quote QuoteRequest) (QuoteRequest, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO quote_requests (client_id, title, description, location, contact_info, status)
    VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6)
    RETURNING id, created_at
  `, quote.ClientID, quote.Title, quote.Description, quote.Location, quote.ContactInfo, quote.Status).Scan(&quote.ID, &quote.CreatedAt)
	if err != nil {
		return QuoteRequest{}, apperr.Store("directory.CreateQuote", err)
	}
	return quote, nil
}

func (s *Store) ListQuotes(ctx context.Context, clientID string) ([]QuoteRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+quoteColumns+`
    FROM quote_requests
    WHERE $1 = '' OR client_id::text = $1
    ORDER BY created_at DESC
  `, clientID)
	if err != nil {
		return nil, apperr.Store("directory.ListQuotes", err)
	}
	defer rows.Close()

	out := make([]QuoteRequest, 0)
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, apperr.Store("directory.ListQuotes", err)
		}
		out = append(out, quote)
	}
	return out, rows.Err()
}

func (s *Store) GetQuote(ctx context.Context, id string) (QuoteRequest, error) {
	quote, err := scanQuote(s.DB.QueryRow(ctx, "SELECT "+quoteColumns+" FROM quote_requests WHERE id = $1", id))
	if err != nil {
		return QuoteRequest{}, notFoundOr("directory.GetQuote", "quote request not found", err)
	}
	return quote, nil
}

func (s *Store) CreateJob(ctx context.Context, job Job) (Job, error) {
	err := querier.InTx(ctx, s.DB, func(tx pgx.Tx) error {
		if job.QuoteRequestID != "" {
			tag, err := tx.Exec(ctx, "UPDATE quote_requests SET status = $1 WHERE id = $2", QuoteStatusConverted, job.QuoteRequestID)
			if err != nil {
				return notFoundOr("directory.CreateJob", "quote request not found", err)
			}
			if tag.RowsAffected() == 0 {
				return apperr.New(apperr.KindNotFound, "directory.CreateJob", "quote request not found")
			}
		}
		return tx.QueryRow(ctx, `
      INSERT INTO jobs (quote_request_id, manager_id, title, description, location, status, start_date, end_date, estimated_hours)
      VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,$7,$8,$9)
      RETURNING id, created_at
    `, job.QuoteRequestID, job.ManagerID, job.Title, job.Description, job.Location, job.Status, job.StartDate, job.EndDate, job.EstimatedHours).Scan(&job.ID, &job.CreatedAt)
	})
	if err != nil {
		return Job{}, apperr.Store("directory.CreateJob", err)
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC")
	if err != nil {
		return nil, apperr.Store("directory.ListJobs", err)
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, apperr.Store("directory.ListJobs", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *Store) GetJob(ctx context.Context, id string) (Job, error) {
	job, err := scanJob(s.DB.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id))
	if err != nil {
		return Job{}, notFoundOr("directory.GetJob", "job not found", err)
	}
	return job, nil
}

func (s *Store) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO assignments (job_id, worker_id, week_start, week_end, notes)
    VALUES ($1,$2,$3,$4,NULLIF($5,''))
    RETURNING id, created_at
  `, a.JobID, a.WorkerID, a.WeekStart, a.WeekEnd, a.Notes).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return Assignment{}, apperr.Store("directory.CreateAssignment", err)
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, workerID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments
    WHERE $1 = '' OR worker_id::text = $1
    ORDER BY week_start DESC, created_at DESC
  `, workerID)
	if err != nil {
		return nil, apperr.Store("directory.ListAssignments", err)
	}
	defer rows.Close()

	out := make([]Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, apperr.Store("directory.ListAssignments", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	a, err := scanAssignment(s.DB.QueryRow(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE id = $1", id))
	if err != nil {
		return Assignment{}, notFoundOr("directory.GetAssignment", "assignment not found", err)
	}
	return a, nil
}

func scanQuote(row pgx.Row) (QuoteRequest, error) {
	var q QuoteRequest
	err := row.Scan(&q.ID, &q.ClientID, &q.Title, &q.Description, &q.Location, &q.ContactInfo, &q.Status, &q.CreatedAt)
	return q, err
}

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.QuoteRequestID, &j.ManagerID, &j.Title, &j.Description, &j.Location, &j.Status, &j.StartDate, &j.EndDate, &j.EstimatedHours, &j.CreatedAt)
	return j, err
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.WeekStart, &a.WeekEnd, &a.Notes, &a.CreatedAt)
	return a, err
}

func notFoundOr(op, message string, err error) error {
	if querier.IsNoRows(err) {
		return apperr.New(apperr.KindNotFound, op, message)
	}
	return apperr.Store(op, err)
}
