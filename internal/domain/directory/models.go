package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusConverted QuoteStatus = "converted"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusScheduled  JobStatus = "SCHEDULED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

type QuoteRequest struct {
	ID          string      `json:"id"`
	ClientID    string      `json:"clientId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location,omitempty"`
	ContactInfo string      `json:"contactInfo,omitempty"`
	Status      QuoteStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Job struct {
	ID             string           `json:"id"`
	QuoteRequestID string           `json:"quoteRequestId,omitempty"`
	ManagerID      string           `json:"managerId"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Location       string           `json:"location"`
	Status         JobStatus        `json:"status"`
	StartDate      *time.Time       `json:"startDate,omitempty"`
	EndDate        *time.Time       `json:"endDate,omitempty"`
	EstimatedHours *decimal.Decimal `json:"estimatedHours,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// Assignment schedules a worker on a job for one Monday-to-Sunday week.
type Assignment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	WorkerID  string    `json:"workerId"`
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type QuoteInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,min=10"`
	Location    string `json:"location" validate:"omitempty,max=500"`
	ContactInfo string `json:"contactInfo" validate:"omitempty,max=500"`
}

type JobInput struct {
	QuoteRequestID string           `json:"quoteRequestId"`
	Title          string           `json:"title" validate:"required,max=200"`
	Description    string           `json:"description" validate:"required,min=10"`
	Location       string           `json:"location" validate:"required,max=500"`
	Status         JobStatus        `json:"status" validate:"omitempty,oneof=PENDING SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	StartDate      *time.Time       `json:"startDate"`
	EndDate        *time.Time       `json:"endDate"`
	EstimatedHours *decimal.Decimal `json:"estimatedHours"`
}

type AssignmentInput struct {
	JobID     string    `json:"jobId" validate:"required"`
	WorkerID  string    `json:"workerId" validate:"required"`
	WeekStart time.Time `json:"weekStart" validate:"required"`
	Notes     string    `json:"notes" validate:"omitempty,max=2000"`
}
