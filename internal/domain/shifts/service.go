// Package shifts implements the worked-shift claim workflow: workers submit,
// managers decide, and an approval produces exactly one payroll record.
package shifts

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/calendar"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/platform/validation"
)

type Config struct {
	Rates    payroll.Rates
	Location *time.Location
}

type Service struct {
	store       StoreAPI
	assignments AssignmentLookup
	validate    *validation.Validator
	cfg         Config

	notify  Notifier
	audit   AuditRecorder
	metrics DecisionCounter
	log     zerolog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notify = n } }

func WithAudit(a AuditRecorder) Option { return func(s *Service) { s.audit = a } }

func WithMetrics(m DecisionCounter) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store StoreAPI, assignments AssignmentLookup, validate *validation.Validator, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Service{
		store:       store,
		assignments: assignments,
		validate:    validate,
		cfg:         cfg,
		log:         zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit records a worker's claim against one of their own assignments.
func (s *Service) Submit(ctx context.Context, caller *auth.Identity, in SubmitInput) (Submission, error) {
	const op = "shifts.Submit"
	worker, err := auth.Authorize(caller, auth.RoleWorker)
	if err != nil {
		return Submission{}, err
	}

	in.AssignmentID = strings.TrimSpace(in.AssignmentID)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.PhotoURIs != nil {
		uris := make([]string, len(in.PhotoURIs))
		for i, uri := range in.PhotoURIs {
			uris[i] = strings.TrimSpace(uri)
		}
		in.PhotoURIs = uris
	}
	issues := s.validate.Struct(in)
	switch {
	case !in.HoursWorked.IsPositive() || in.HoursWorked.GreaterThan(maxShiftHours):
		issues = append(issues, apperr.FieldIssue{Field: "hoursWorked", Reason: "hoursWorked must be greater than 0 and at most 24"})
	case !in.HoursWorked.Equal(in.HoursWorked.Truncate(hoursScale)):
		issues = append(issues, apperr.FieldIssue{Field: "hoursWorked", Reason: "hoursWorked must have at most 2 decimal places"})
	}
	if len(issues) > 0 {
		return Submission{}, apperr.Validation(op, issues)
	}

	assignment, err := s.assignments.GetAssignment(ctx, in.AssignmentID)
	if err != nil {
		return Submission{}, apperr.Store(op, err)
	}
	if assignment.WorkerID != worker.ID {
		return Submission{}, apperr.New(apperr.KindNotFound, op, "assignment not found")
	}

	sub, err := s.store.CreateShift(ctx, Submission{
		AssignmentID: assignment.ID,
		WorkerID:     worker.ID,
		Date:         calendar.InLocation(in.Date, time.UTC),
		HoursWorked:  in.HoursWorked,
		PhotoURIs:    in.PhotoURIs,
		Notes:        in.Notes,
		Status:       StatusSubmitted,
	})
	if err != nil {
		return Submission{}, apperr.Store(op, err)
	}
	if s.metrics != nil {
		s.metrics.IncShiftSubmitted()
	}
	return sub, nil
}

// Decide approves or rejects a submitted shift. The status change and the
// payroll record commit together or not at all; concurrent deciders on one
// shift see exactly one success.
func (s *Service) Decide(ctx context.Context, caller *auth.Identity, shiftID string, decision Status) (Submission, error) {
	const op = "shifts.Decide"
	manager, err := auth.Authorize(caller, auth.RoleManager)
	if err != nil {
		return Submission{}, err
	}
	if !decision.IsDecision() {
		return Submission{}, apperr.Validation(op, []apperr.FieldIssue{{Field: "status", Reason: "status must be one of [APPROVED REJECTED]"}})
	}

	var (
		updated Submission
		created *payroll.Record
	)
	err = s.store.WithShiftTx(ctx, func(tx TxStore) error {
		current, err := tx.LockShift(ctx, shiftID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(decision) {
			return apperr.Newf(apperr.KindInvalidStateTransition, op, "shift is already %s", current.Status)
		}

		at := s.now().UTC()
		changed, err := tx.TransitionShift(ctx, current.ID, current.Status, decision, manager.ID, at)
		if err != nil {
			return err
		}
		if !changed {
			return apperr.New(apperr.KindInvalidStateTransition, op, "shift was decided concurrently")
		}
		current.Status = decision
		current.ApprovedByID = manager.ID
		current.ApprovedAt = &at

		if decision == StatusApproved {
			rec, err := s.payrollFor(current)
			if err != nil {
				return err
			}
			rec, err = tx.CreatePayroll(ctx, rec)
			if err != nil {
				return err
			}
			created = &rec
		}
		updated = current
		return nil
	})
	if err != nil {
		return Submission{}, apperr.Store(op, err)
	}

	s.afterDecision(ctx, manager, updated, created)
	return updated, nil
}

// List returns shifts newest first; a worker only sees their own.
func (s *Service) List(ctx context.Context, caller *auth.Identity, filter Filter) ([]Submission, error) {
	user, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker)
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleWorker:
		filter.WorkerID = user.ID
	default:
		return nil, auth.ErrForbiddenRole("shifts.List")
	}
	subs, err := s.store.ListShifts(ctx, filter)
	if err != nil {
		return nil, apperr.Store("shifts.List", err)
	}
	return subs, nil
}

func (s *Service) Get(ctx context.Context, caller *auth.Identity, id string) (Submission, error) {
	user, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker)
	if err != nil {
		return Submission{}, err
	}
	sub, err := s.store.GetShift(ctx, id)
	if err != nil {
		return Submission{}, apperr.Store("shifts.Get", err)
	}
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleWorker:
		if sub.WorkerID != user.ID {
			return Submission{}, apperr.New(apperr.KindNotFound, "shifts.Get", "shift not found")
		}
	default:
		return Submission{}, auth.ErrForbiddenRole("shifts.Get")
	}
	return sub, nil
}

func (s *Service) payrollFor(sub Submission) (payroll.Record, error) {
	pay, err := s.cfg.Rates.Pay(sub.HoursWorked)
	if err != nil {
		return payroll.Record{}, err
	}
	start, end := calendar.WeekBounds(calendar.InLocation(sub.Date, s.cfg.Location))
	return payroll.Record{
		ShiftID:     sub.ID,
		WorkerID:    sub.WorkerID,
		WeekStart:   start,
		WeekEnd:     end,
		HoursWorked: sub.HoursWorked,
		FullDayRate: s.cfg.Rates.FullDayRate,
		TotalAmount: pay.TotalAmount,
	}, nil
}

// afterDecision runs side effects of a committed decision. Their failures
// are logged only.
func (s *Service) afterDecision(ctx context.Context, manager auth.Identity, sub Submission, rec *payroll.Record) {
	if s.metrics != nil {
		s.metrics.IncShiftDecided(string(sub.Status))
	}
	if s.audit != nil {
		action := "shift.reject"
		if sub.Status == StatusApproved {
			action = "shift.approve"
		}
		if err := s.audit.Record(ctx, manager.ID, action, "shift_submission", sub.ID, sub); err != nil {
			s.log.Warn().Err(err).Str("shiftId", sub.ID).Msg("audit shift decision failed")
		}
	}
	if s.notify != nil {
		if err := s.notify.ShiftDecided(ctx, sub, rec); err != nil {
			s.log.Warn().Err(err).Str("shiftId", sub.ID).Msg("notify shift decision failed")
		}
	}
}
