package entity

import "time"

// LoanStatus is the client-visible state of a loan.
//
// Active -> Overdue is time-triggered (due date passed); Returned is terminal
// and may be reached from either state.
type LoanStatus string

const (
	LoanActive   LoanStatus = "Active"
	LoanReturned LoanStatus = "Returned"
	LoanOverdue  LoanStatus = "Overdue"
)

// Loan is a borrow record. Status may be empty when the backend leaves it to
// the client to derive; use EffectiveStatus for display and filtering.
type Loan struct {
	ID         int64      `json:"id"`
	Book       Book       `json:"book"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	Status     LoanStatus `json:"status,omitempty"`
}

// EffectiveStatus resolves the loan status at read time. Returned is absorbing.
// An explicit Overdue from the backend is trusted; otherwise Overdue is derived
// by comparing the due date against now at day granularity, matching the
// storefront's display rules. The derived value is never written back, so it
// can never go stale relative to the wall clock.
func (l Loan) EffectiveStatus(now time.Time) LoanStatus {
	switch l.Status {
	case LoanReturned:
		return LoanReturned
	case LoanOverdue:
		return LoanOverdue
	}

	if !l.DueAt.IsZero() && dayOf(l.DueAt).Before(dayOf(now)) {
		return LoanOverdue
	}

	return LoanActive
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
