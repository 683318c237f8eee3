package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/calendar"
)

type Service struct {
	store StoreAPI
	users auth.UserLookup
	loc   *time.Location
}

func NewService(store StoreAPI, users auth.UserLookup, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, users: users, loc: loc}
}

// List returns payroll entries newest week first. Workers only ever see
// their own entries; managers may filter by worker.
func (s *Service) List(ctx context.Context, caller *auth.Identity, filter Filter) ([]Entry, error) {
	user, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker)
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleWorker:
		filter.WorkerID = user.ID
	default:
		return nil, auth.ErrForbiddenRole("payroll.List")
	}
	if filter.WeekStart != nil {
		start, _ := calendar.WeekBounds(calendar.InLocation(*filter.WeekStart, s.loc))
		filter.WeekStart = &start
	}
	entries, err := s.store.ListPayroll(ctx, filter)
	if err != nil {
		return nil, apperr.Store("payroll.List", err)
	}
	return entries, nil
}

// WeeklySummary totals the persisted payroll of the week containing anchor.
func (s *Service) WeeklySummary(ctx context.Context, caller *auth.Identity, anchor time.Time) (WeeklySummary, error) {
	if anchor.IsZero() {
		anchor = time.Now()
	}
	entries, err := s.List(ctx, caller, Filter{WeekStart: &anchor})
	if err != nil {
		return WeeklySummary{}, err
	}
	start, end := calendar.WeekBounds(calendar.InLocation(anchor, s.loc))
	return Summarize(start, end, entries), nil
}

func (s *Service) Get(ctx context.Context, caller *auth.Identity, id string) (Record, error) {
	user, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.GetPayroll(ctx, id)
	if err != nil {
		return Record{}, apperr.Store("payroll.Get", err)
	}
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleWorker:
		if rec.WorkerID != user.ID {
			return Record{}, apperr.New(apperr.KindNotFound, "payroll.Get", "payroll record not found")
		}
	default:
		return Record{}, auth.ErrForbiddenRole("payroll.Get")
	}
	return rec, nil
}

// Payslip renders a single payroll record as a PDF.
func (s *Service) Payslip(ctx context.Context, caller *auth.Identity, id string) (Record, []byte, error) {
	rec, err := s.Get(ctx, caller, id)
	if err != nil {
		return Record{}, nil, err
	}
	worker, err := s.users.FindUserByID(ctx, rec.WorkerID)
	if err != nil {
		return Record{}, nil, apperr.Store("payroll.Payslip", err)
	}
	pdf, err := RenderPayslip(rec, worker)
	if err != nil {
		return Record{}, nil, apperr.Store("payroll.Payslip", err)
	}
	return rec, pdf, nil
}

// Summarize groups entries by worker, ordered by worker id.
func Summarize(start, end time.Time, entries []Entry) WeeklySummary {
	byWorker := map[string]*WorkerTotal{}
	var amounts, hours []decimal.Decimal
	for _, rec := range entries {
		total, ok := byWorker[rec.WorkerID]
		if !ok {
			total = &WorkerTotal{WorkerID: rec.WorkerID, WorkerName: rec.WorkerName}
			byWorker[rec.WorkerID] = total
		}
		total.Shifts++
		total.HoursWorked = total.HoursWorked.Add(rec.HoursWorked)
		total.TotalAmount = total.TotalAmount.Add(rec.TotalAmount)
		amounts = append(amounts, rec.TotalAmount)
		hours = append(hours, rec.HoursWorked)
	}

	workers := make([]WorkerTotal, 0, len(byWorker))
	for _, total := range byWorker {
		workers = append(workers, *total)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].WorkerID < workers[j].WorkerID })

	return WeeklySummary{
		WeekStart:   start,
		WeekEnd:     end,
		Workers:     workers,
		HoursWorked: decimal.Sum(decimal.Zero, hours...),
		TotalAmount: SumAmounts(amounts...),
	}
}
