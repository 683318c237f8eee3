// Package memstore keeps every store in process memory. It backs the
// memory driver and the service tests.
//
// One mutex guards all state. A shift transaction holds it for its whole
// duration and restores a snapshot if the callback fails.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/audit"
	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/directory"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/domain/shifts"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users       map[string]auth.User
	quotes      map[string]directory.QuoteRequest
	jobs        map[string]directory.Job
	assignments map[string]directory.Assignment
	shifts      map[string]shifts.Submission
	payrolls    map[string]payroll.Record
	events      []audit.Event
	seq         int64
}

func New() *Store {
	return &Store{
		now:         time.Now,
		users:       map[string]auth.User{},
		quotes:      map[string]directory.QuoteRequest{},
		jobs:        map[string]directory.Job{},
		assignments: map[string]directory.Assignment{},
		shifts:      map[string]shifts.Submission{},
		payrolls:    map[string]payroll.Record{},
	}
}

// created returns a strictly increasing timestamp so insertion order
// survives equal wall-clock readings.
func (s *Store) created() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

func notFound(op, message string) error {
	return apperr.New(apperr.KindNotFound, op, message)
}

// Users

func (s *Store) FindUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return auth.User{}, notFound("memstore.FindUserByEmail", "user not found")
}

func (s *Store) FindUserByID(_ context.Context, id string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, notFound("memstore.FindUserByID", "user not found")
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, user auth.User) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return auth.User{}, apperr.Validation("memstore.CreateUser", []apperr.FieldIssue{{Field: "email", Reason: "email is already registered"}})
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = s.created()
	s.users[user.ID] = user
	return user, nil
}

// Quotes, jobs and assignments

func (s *Store) CreateQuote(_ context.Context, quote directory.QuoteRequest) (directory.QuoteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote.ID = uuid.NewString()
	quote.CreatedAt = s.created()
	s.quotes[quote.ID] = quote
	return quote, nil
}

func (s *Store) ListQuotes(_ context.Context, clientID string) ([]directory.QuoteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]directory.QuoteRequest, 0)
	for _, q := range s.quotes {
		if clientID == "" || q.ClientID == clientID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetQuote(_ context.Context, id string) (directory.QuoteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return directory.QuoteRequest{}, notFound("memstore.GetQuote", "quote request not found")
	}
	return q, nil
}

func (s *Store) CreateJob(_ context.Context, job directory.Job) (directory.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.QuoteRequestID != "" {
		quote, ok := s.quotes[job.QuoteRequestID]
		if !ok {
			return directory.Job{}, notFound("memstore.CreateJob", "quote request not found")
		}
		quote.Status = directory.QuoteStatusConverted
		s.quotes[quote.ID] = quote
	}
	job.ID = uuid.NewString()
	job.CreatedAt = s.created()
	s.jobs[job.ID] = job
	return job, nil
}

func (s *Store) ListJobs(_ context.Context) ([]directory.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]directory.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetJob(_ context.Context, id string) (directory.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return directory.Job{}, notFound("memstore.GetJob", "job not found")
	}
	return j, nil
}

func (s *Store) CreateAssignment(_ context.Context, a directory.Assignment) (directory.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[a.JobID]; !ok {
		return directory.Assignment{}, notFound("memstore.CreateAssignment", "job not found")
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.created()
	s.assignments[a.ID] = a
	return a, nil
}

func (s *Store) ListAssignments(_ context.Context, workerID string) ([]directory.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]directory.Assignment, 0)
	for _, a := range s.assignments {
		if workerID == "" || a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.After(out[j].WeekStart)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetAssignment(_ context.Context, id string) (directory.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return directory.Assignment{}, notFound("memstore.GetAssignment", "assignment not found")
	}
	return a, nil
}

// Shifts

func (s *Store) CreateShift(_ context.Context, sub shifts.Submission) (shifts.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[sub.AssignmentID]; !ok {
		return shifts.Submission{}, notFound("memstore.CreateShift", "assignment not found")
	}
	sub.ID = uuid.NewString()
	sub.CreatedAt = s.created()
	sub = copyShift(sub)
	s.shifts[sub.ID] = sub
	return copyShift(sub), nil
}

func (s *Store) GetShift(_ context.Context, id string) (shifts.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.shifts[id]
	if !ok {
		return shifts.Submission{}, notFound("memstore.GetShift", "shift not found")
	}
	return copyShift(sub), nil
}

func (s *Store) ListShifts(_ context.Context, filter shifts.Filter) ([]shifts.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shifts.Submission, 0)
	for _, sub := range s.shifts {
		if filter.WorkerID != "" && sub.WorkerID != filter.WorkerID {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		out = append(out, copyShift(sub))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Store) WithShiftTx(ctx context.Context, fn func(tx shifts.TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	shiftSnapshot := cloneMap(s.shifts)
	payrollSnapshot := cloneMap(s.payrolls)
	seq := s.seq

	err := fn(&memTx{store: s})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.shifts = shiftSnapshot
		s.payrolls = payrollSnapshot
		s.seq = seq
		return err
	}
	return nil
}

// memTx runs with Store.mu already held.
type memTx struct {
	store *Store
}

func (t *memTx) LockShift(_ context.Context, id string) (shifts.Submission, error) {
	sub, ok := t.store.shifts[id]
	if !ok {
		return shifts.Submission{}, notFound("memstore.LockShift", "shift not found")
	}
	return copyShift(sub), nil
}

func (t *memTx) TransitionShift(_ context.Context, id string, from, to shifts.Status, deciderID string, at time.Time) (bool, error) {
	sub, ok := t.store.shifts[id]
	if !ok || sub.Status != from {
		return false, nil
	}
	sub.Status = to
	sub.ApprovedByID = deciderID
	sub.ApprovedAt = &at
	t.store.shifts[id] = sub
	return true, nil
}

func (t *memTx) CreatePayroll(_ context.Context, rec payroll.Record) (payroll.Record, error) {
	for _, existing := range t.store.payrolls {
		if existing.ShiftID == rec.ShiftID {
			return payroll.Record{}, apperr.New(apperr.KindInvalidStateTransition, "memstore.CreatePayroll", "payroll already exists for shift")
		}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = t.store.created()
	t.store.payrolls[rec.ID] = rec
	return rec, nil
}

// Payroll

func (s *Store) ListPayroll(_ context.Context, filter payroll.Filter) ([]payroll.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]payroll.Entry, 0)
	for _, rec := range s.payrolls {
		if filter.WorkerID != "" && rec.WorkerID != filter.WorkerID {
			continue
		}
		if filter.WeekStart != nil && !rec.WeekStart.Equal(*filter.WeekStart) {
			continue
		}
		out = append(out, s.payrollEntry(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.After(out[j].WeekStart)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// payrollEntry joins rec the way the postgres store does, leaving fields
// empty for missing rows. Callers hold s.mu.
func (s *Store) payrollEntry(rec payroll.Record) payroll.Entry {
	e := payroll.Entry{Record: rec}
	if u, ok := s.users[rec.WorkerID]; ok {
		e.WorkerName, e.WorkerEmail = u.Name, u.Email
	}
	if sub, ok := s.shifts[rec.ShiftID]; ok {
		if a, ok := s.assignments[sub.AssignmentID]; ok {
			if j, ok := s.jobs[a.JobID]; ok {
				e.JobTitle, e.JobLocation = j.Title, j.Location
			}
		}
	}
	return e
}

func (s *Store) GetPayroll(_ context.Context, id string) (payroll.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.payrolls[id]
	if !ok {
		return payroll.Record{}, notFound("memstore.GetPayroll", "payroll record not found")
	}
	return rec, nil
}

// Audit

func (s *Store) InsertEvent(_ context.Context, evt audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt.ID = uuid.NewString()
	evt.CreatedAt = s.created()
	s.events = append(s.events, evt)
	return nil
}

func (s *Store) ListEvents(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		evt := s.events[i]
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		if filter.ActorUser != "" && evt.ActorID != filter.ActorUser {
			continue
		}
		out = append(out, evt)
	}
	return page(out, limit, offset), nil
}

// copyShift detaches sub from stored state.
func copyShift(sub shifts.Submission) shifts.Submission {
	sub.PhotoURIs = slices.Clone(sub.PhotoURIs)
	if sub.ApprovedAt != nil {
		at := *sub.ApprovedAt
		sub.ApprovedAt = &at
	}
	return sub
}

// Ping satisfies the readiness probe.
func (s *Store) Ping(context.Context) error { return nil }

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
