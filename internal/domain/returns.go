package domain

import "time"

// Return represents goods coming back from a customer. The transition into
// Accepted puts the returned quantity back on the books as new cost layers;
// reverting out of Accepted removes them again.
type Return struct {
	ID         int64        `json:"id" db:"id"`
	Reference  string       `json:"reference" db:"reference"`
	OrderID    *int64       `json:"order_id" db:"order_id"`
	Status     int          `json:"status" db:"status"`
	ReceivedAt time.Time    `json:"received_at" db:"received_at"`
	Lines      []ReturnLine `json:"lines" db:"-"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// ReturnLine is one returned SKU position.
type ReturnLine struct {
	ID       int64  `json:"id" db:"id"`
	ReturnID int64  `json:"return_id" db:"return_id"`
	SKU      string `json:"sku" db:"sku"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// CreateReturnRequest is the payload for registering a return.
type CreateReturnRequest struct {
	Reference  string                    `json:"reference" binding:"required"`
	OrderID    *int64                    `json:"order_id"`
	ReceivedAt time.Time                 `json:"received_at"`
	Lines      []CreateReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateReturnLineRequest is one line of a return create request.
type CreateReturnLineRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateReturnStatusRequest moves a return to a new status.
type UpdateReturnStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
