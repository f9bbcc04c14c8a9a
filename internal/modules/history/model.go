// README: Order-history engagement record and status definitions.
package history

import (
	"time"

	"homecall/internal/types"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusAccepted   Status = "Accepted"
	StatusInProgress Status = "InProgress"
	StatusCancelled  Status = "Cancelled"
	StatusCompleted  Status = "Completed"
	StatusPaid       Status = "Paid"
	// StatusRefund is terminal and only reachable out-of-band (manual
	// adjustment); no operation below transitions into it.
	StatusRefund Status = "Refund"
)

// History binds one order to the provider engaged with it. Rows are never
// deleted; they form the audit trail of every engagement.
type History struct {
	ID         types.ID
	OrderID    types.ID
	UserID     types.ID
	ProviderID types.ID
	Status     Status
	// OTP and OTPExpiry form a value pair replaced atomically on
	// generate/verify/clear. Expiry is an absolute timestamp.
	OTP       *string
	OTPExpiry *time.Time
	Reason    *string
	ImageKey  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowedTransitions encodes the forward-only lifecycle. Cancelled is
// reachable from every non-terminal state.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusPaid},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
