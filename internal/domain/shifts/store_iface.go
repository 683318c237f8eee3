package shifts

import (
	"context"
	"time"

	"crewshift/internal/domain/directory"
	"crewshift/internal/domain/payroll"
)

type StoreAPI interface {
	CreateShift(ctx context.Context, sub Submission) (Submission, error)
	GetShift(ctx context.Context, id string) (Submission, error)
	// ListShifts orders by shift date, newest first.
	ListShifts(ctx context.Context, filter Filter) ([]Submission, error)
	// WithShiftTx runs fn atomically; any error rolls every write back.
	WithShiftTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the set of writes a decision makes inside one transaction.
type TxStore interface {
	// LockShift reads the shift and holds it until the transaction ends.
	LockShift(ctx context.Context, id string) (Submission, error)
	// TransitionShift updates status only while it still equals from and
	// reports whether a row changed.
	TransitionShift(ctx context.Context, id string, from, to Status, deciderID string, at time.Time) (bool, error)
	CreatePayroll(ctx context.Context, rec payroll.Record) (payroll.Record, error)
}

type AssignmentLookup interface {
	GetAssignment(ctx context.Context, id string) (directory.Assignment, error)
}

// Notifier is told about committed decisions.
type Notifier interface {
	ShiftDecided(ctx context.Context, sub Submission, rec *payroll.Record) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, after any) error
}

type DecisionCounter interface {
	IncShiftSubmitted()
	IncShiftDecided(status string)
}
