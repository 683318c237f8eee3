package directory

import (
	"context"
	"strings"
	"time"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/calendar"
	"crewshift/internal/platform/validation"
)

type Service struct {
	store    StoreAPI
	users    auth.UserLookup
	validate *validation.Validator
	loc      *time.Location
}

func NewService(store StoreAPI, users auth.UserLookup, validate *validation.Validator, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, users: users, validate: validate, loc: loc}
}

func (s *Service) CreateQuote(ctx context.Context, caller *auth.Identity, in QuoteInput) (QuoteRequest, error) {
	const op = "directory.CreateQuote"
	client, err := auth.Authorize(caller, auth.RoleClient)
	if err != nil {
		return QuoteRequest{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	if issues := s.validate.Struct(in); len(issues) > 0 {
		return QuoteRequest{}, apperr.Validation(op, issues)
	}

	quote, err := s.store.CreateQuote(ctx, QuoteRequest{
		ClientID:    client.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		ContactInfo: in.ContactInfo,
		Status:      QuoteStatusPending,
	})
	if err != nil {
		return QuoteRequest{}, apperr.Store(op, err)
	}
	return quote, nil
}

// ListQuotes returns a client's own quotes, or every quote for a manager.
func (s *Service) ListQuotes(ctx context.Context, caller *auth.Identity) ([]QuoteRequest, error) {
	user, err := auth.Authorize(caller, auth.RoleClient, auth.RoleManager)
	if err != nil {
		return nil, err
	}
	var clientID string
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleClient:
		clientID = user.ID
	default:
		return nil, auth.ErrForbiddenRole("directory.ListQuotes")
	}
	quotes, err := s.store.ListQuotes(ctx, clientID)
	if err != nil {
		return nil, apperr.Store("directory.ListQuotes", err)
	}
	return quotes, nil
}

func (s *Service) CreateJob(ctx context.Context, caller *auth.Identity, in JobInput) (Job, error) {
	const op = "directory.CreateJob"
	manager, err := auth.Authorize(caller, auth.RoleManager)
	if err != nil {
		return Job{}, err
	}
	in.QuoteRequestID = strings.TrimSpace(in.QuoteRequestID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Status = JobStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))

	issues := s.validate.Struct(in)
	if in.EstimatedHours != nil && !in.EstimatedHours.IsPositive() {
		issues = append(issues, apperr.FieldIssue{Field: "estimatedHours", Reason: "estimatedHours must be greater than 0"})
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		issues = append(issues, apperr.FieldIssue{Field: "endDate", Reason: "endDate must be on or after startDate"})
	}
	if len(issues) > 0 {
		return Job{}, apperr.Validation(op, issues)
	}
	if in.Status == "" {
		in.Status = JobStatusPending
	}

	job, err := s.store.CreateJob(ctx, Job{
		QuoteRequestID: in.QuoteRequestID,
		ManagerID:      manager.ID,
		Title:          in.Title,
		Description:    in.Description,
		Location:       in.Location,
		Status:         in.Status,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		EstimatedHours: in.EstimatedHours,
	})
	if err != nil {
		return Job{}, apperr.Store(op, err)
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, caller *auth.Identity) ([]Job, error) {
	if _, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, apperr.Store("directory.ListJobs", err)
	}
	return jobs, nil
}

// CreateAssignment schedules a worker for the week containing in.WeekStart.
func (s *Service) CreateAssignment(ctx context.Context, caller *auth.Identity, in AssignmentInput) (Assignment, error) {
	const op = "directory.CreateAssignment"
	if _, err := auth.Authorize(caller, auth.RoleManager); err != nil {
		return Assignment{}, err
	}
	in.JobID = strings.TrimSpace(in.JobID)
	in.WorkerID = strings.TrimSpace(in.WorkerID)
	in.Notes = strings.TrimSpace(in.Notes)
	if issues := s.validate.Struct(in); len(issues) > 0 {
		return Assignment{}, apperr.Validation(op, issues)
	}

	if _, err := s.store.GetJob(ctx, in.JobID); err != nil {
		return Assignment{}, apperr.Store(op, err)
	}
	worker, err := s.users.FindUserByID(ctx, in.WorkerID)
	if err != nil {
		return Assignment{}, apperr.Store(op, err)
	}
	if worker.Role != auth.RoleWorker {
		return Assignment{}, apperr.New(apperr.KindNotFound, op, "worker not found")
	}

	start, end := calendar.WeekBounds(calendar.InLocation(in.WeekStart, s.loc))
	assignment, err := s.store.CreateAssignment(ctx, Assignment{
		JobID:     in.JobID,
		WorkerID:  worker.ID,
		WeekStart: start,
		WeekEnd:   end,
		Notes:     in.Notes,
	})
	if err != nil {
		return Assignment{}, apperr.Store(op, err)
	}
	return assignment, nil
}

// ListAssignments returns a worker's own assignments, or all for a manager.
func (s *Service) ListAssignments(ctx context.Context, caller *auth.Identity) ([]Assignment, error) {
	user, err := auth.Authorize(caller, auth.RoleManager, auth.RoleWorker)
	if err != nil {
		return nil, err
	}
	var workerID string
	switch user.Role {
	case auth.RoleManager:
	case auth.RoleWorker:
		workerID = user.ID
	default:
		return nil, auth.ErrForbiddenRole("directory.ListAssignments")
	}
	assignments, err := s.store.ListAssignments(ctx, workerID)
	if err != nil {
		return nil, apperr.Store("directory.ListAssignments", err)
	}
	return assignments, nil
}
