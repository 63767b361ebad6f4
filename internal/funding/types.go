package funding

import "github.com/google/uuid"

// DepositChannel is the (address, payment URI) pair a user sends crypto to
// for the selected currency. It is replaced whole on every fetch, never
// merged.
type DepositChannel struct {
	Tab        Tab
	Address    string
	PaymentURI string
}

// Quote is the current conversion estimate for the selected currency.
type Quote struct {
	Tab             Tab
	Amount          float64
	EstimatedTokens string // display-formatted, "0" for no estimate
}

// PurchaseIntent is a confirmed purchase. Immutable once submitted; the ID
// doubles as an idempotency key for the backend.
type PurchaseIntent struct {
	ID       uuid.UUID
	Currency string
	Amount   float64
	Estimate string
}

// SubmissionState is the observable outcome of a purchase submission.
// Submission never blocks the flow or rolls back the locked view.
type SubmissionState int

// Submission states.
const (
	SubmissionNone SubmissionState = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
)

// String returns the submission state name.
func (s SubmissionState) String() string {
	switch s {
	case SubmissionPending:
		return "pending"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "none"
	}
}
