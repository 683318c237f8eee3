package notifications

const (
	TypeShiftApproved = "shift_approved"
	TypeShiftRejected = "shift_rejected"
)
