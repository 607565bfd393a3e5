package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const listingOrderColumns = `id, merchant_name, email, plan_code, amount_cents, currency,
	stripe_customer_id, stripe_payment_intent, status, fulfilment, error_message,
	paid_at, activated_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListingOrder(row rowScanner) (ListingOrder, error) {
	var o ListingOrder
	err := row.Scan(
		&o.ID,
		&o.MerchantName,
		&o.Email,
		&o.PlanCode,
		&o.AmountCents,
		&o.Currency,
		&o.StripeCustomerID,
		&o.StripePaymentIntent,
		&o.Status,
		&o.Fulfilment,
		&o.ErrorMessage,
		&o.PaidAt,
		&o.ActivatedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// ─── CREATE / READ ───────────────────────────────────────────────────────────

type CreateListingOrderParams struct {
	MerchantName string
	Email        string
	PlanCode     string
	AmountCents  int64
	Currency     string
}

const createListingOrder = `
INSERT INTO listing_orders (merchant_name, email, plan_code, amount_cents, currency)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + listingOrderColumns

func (q *Queries) CreateListingOrder(ctx context.Context, p CreateListingOrderParams) (ListingOrder, error) {
	row := q.db.QueryRowContext(ctx, createListingOrder,
		p.MerchantName, p.Email, p.PlanCode, p.AmountCents, p.Currency)
	return scanListingOrder(row)
}

const getListingOrderByID = `
SELECT ` + listingOrderColumns + `
FROM listing_orders
WHERE id = $1`

func (q *Queries) GetListingOrderByID(ctx context.Context, id uuid.UUID) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, getListingOrderByID, id))
}

const getListingOrderByPaymentIntent = `
SELECT ` + listingOrderColumns + `
FROM listing_orders
WHERE stripe_payment_intent = $1`

func (q *Queries) GetListingOrderByPaymentIntent(ctx context.Context, stripePaymentIntent string) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, getListingOrderByPaymentIntent, stripePaymentIntent))
}

// ─── PAYMENT LIFECYCLE ───────────────────────────────────────────────────────

type AttachStripePaymentParams struct {
	ID                  uuid.UUID
	StripeCustomerID    sql.NullString
	StripePaymentIntent sql.NullString
}

const attachStripePayment = `
UPDATE listing_orders
SET stripe_customer_id = $2,
    stripe_payment_intent = $3,
    updated_at = now()
WHERE id = $1
RETURNING ` + listingOrderColumns

func (q *Queries) AttachStripePayment(ctx context.Context, p AttachStripePaymentParams) (ListingOrder, error) {
	row := q.db.QueryRowContext(ctx, attachStripePayment,
		p.ID, p.StripeCustomerID, p.StripePaymentIntent)
	return scanListingOrder(row)
}

const markListingOrderPaid = `
UPDATE listing_orders
SET status = 'paid',
    paid_at = now(),
    updated_at = now()
WHERE stripe_payment_intent = $1
RETURNING ` + listingOrderColumns

func (q *Queries) MarkListingOrderPaid(ctx context.Context, stripePaymentIntent string) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, markListingOrderPaid, stripePaymentIntent))
}

const markListingOrderPaymentFailed = `
UPDATE listing_orders
SET status = 'payment_failed',
    updated_at = now()
WHERE stripe_payment_intent = $1
RETURNING ` + listingOrderColumns

func (q *Queries) MarkListingOrderPaymentFailed(ctx context.Context, stripePaymentIntent string) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, markListingOrderPaymentFailed, stripePaymentIntent))
}

// ─── FULFILMENT ──────────────────────────────────────────────────────────────

type ActivateListingOrderParams struct {
	ID         uuid.UUID
	Fulfilment pqtype.NullRawMessage
}

const activateListingOrder = `
UPDATE listing_orders
SET status = 'active',
    fulfilment = $2,
    activated_at = now(),
    updated_at = now()
WHERE id = $1
RETURNING ` + listingOrderColumns

func (q *Queries) ActivateListingOrder(ctx context.Context, p ActivateListingOrderParams) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, activateListingOrder, p.ID, p.Fulfilment))
}

type SetListingOrderErrorParams struct {
	ID           uuid.UUID
	ErrorMessage sql.NullString
}

const setListingOrderError = `
UPDATE listing_orders
SET status = 'error',
    error_message = $2,
    updated_at = now()
WHERE id = $1
RETURNING ` + listingOrderColumns

func (q *Queries) SetListingOrderError(ctx context.Context, p SetListingOrderErrorParams) (ListingOrder, error) {
	return scanListingOrder(q.db.QueryRowContext(ctx, setListingOrderError, p.ID, p.ErrorMessage))
}

const listPaidUnactivatedOrders = `
SELECT ` + listingOrderColumns + `
FROM listing_orders
WHERE status = 'paid'
ORDER BY paid_at ASC
LIMIT $1`

// ListPaidUnactivatedOrders returns orders that were paid but never
// activated — the recovery path after a crash or restart.
func (q *Queries) ListPaidUnactivatedOrders(ctx context.Context, limit int32) ([]ListingOrder, error) {
	rows, err := q.db.QueryContext(ctx, listPaidUnactivatedOrders, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []ListingOrder
	for rows.Next() {
		o, err := scanListingOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
