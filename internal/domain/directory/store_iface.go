package directory

import "context"

type StoreAPI interface {
	CreateQuote(ctx context.Context, quote QuoteRequest) (QuoteRequest, error)
	// ListQuotes lists every quote when clientID is empty.
	ListQuotes(ctx context.Context, clientID string) ([]QuoteRequest, error)
	GetQuote(ctx context.Context, id string) (QuoteRequest, error)
	// CreateJob marks the referenced quote converted in the same transaction.
	CreateJob(ctx context.Context, job Job) (Job, error)
	ListJobs(ctx context.Context) ([]Job, error)
	GetJob(ctx context.Context, id string) (Job, error)
	CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	// ListAssignments lists every assignment when workerID is empty.
	ListAssignments(ctx context.Context, workerID string) ([]Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
}
