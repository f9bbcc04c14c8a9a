// README: Order aggregate. Orders are immutable after creation; lifecycle
// state lives on the history side-table.
package order

import (
	"time"

	"homecall/internal/types"
)

type Item struct {
	ServiceID     types.ID
	CategoryID    types.ID
	SubcategoryID types.ID
	Quantity      int
	ScheduledDate string
	ScheduledTime string
}

type Order struct {
	ID             types.ID
	UserID         types.ID
	AddressID      types.ID
	PaymentID      string
	CategoryIDs    []types.ID
	SubCategoryIDs []types.ID
	Items          []Item
	CreatedAt      time.Time
}
