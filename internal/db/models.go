package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// ListingOrderStatus is the lifecycle state of a merchant listing order.
type ListingOrderStatus string

const (
	ListingOrderStatusPending       ListingOrderStatus = "pending"
	ListingOrderStatusPaid          ListingOrderStatus = "paid"
	ListingOrderStatusActive        ListingOrderStatus = "active"
	ListingOrderStatusPaymentFailed ListingOrderStatus = "payment_failed"
	ListingOrderStatusError         ListingOrderStatus = "error"
)

// ListingOrder is one merchant's purchase of a deal listing slot.
type ListingOrder struct {
	ID                  uuid.UUID
	MerchantName        string
	Email               string
	PlanCode            string
	AmountCents         int64
	Currency            string
	StripeCustomerID    sql.NullString
	StripePaymentIntent sql.NullString
	Status              ListingOrderStatus
	// Fulfilment is a jsonb snapshot written when the listing is activated.
	Fulfilment   pqtype.NullRawMessage
	ErrorMessage sql.NullString
	PaidAt       sql.NullTime
	ActivatedAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StripeEvent records a webhook delivery for idempotent processing.
type StripeEvent struct {
	StripeEventID string
	Type          string
	Payload       json.RawMessage
	ProcessedAt   sql.NullTime
	Error         sql.NullString
	CreatedAt     time.Time
}
