package payroll

import "context"

type StoreAPI interface {
	ListPayroll(ctx context.Context, filter Filter) ([]Entry, error)
	GetPayroll(ctx context.Context, id string) (Record, error)
}
