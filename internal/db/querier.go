package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Querier is the interface the api, store, and worker packages depend on.
// Tests inject a stub; production uses *Queries.
type Querier interface {
	// ConsumeRedemption invokes the consume_redemption procedure with a
	// verbatim QR token and returns its raw JSON result. All redemption
	// business rules (expiry, monthly caps, idempotency) live in the
	// procedure, not here.
	ConsumeRedemption(ctx context.Context, token string) (json.RawMessage, error)

	CreateListingOrder(ctx context.Context, p CreateListingOrderParams) (ListingOrder, error)
	GetListingOrderByID(ctx context.Context, id uuid.UUID) (ListingOrder, error)
	GetListingOrderByPaymentIntent(ctx context.Context, stripePaymentIntent string) (ListingOrder, error)
	AttachStripePayment(ctx context.Context, p AttachStripePaymentParams) (ListingOrder, error)
	MarkListingOrderPaid(ctx context.Context, stripePaymentIntent string) (ListingOrder, error)
	MarkListingOrderPaymentFailed(ctx context.Context, stripePaymentIntent string) (ListingOrder, error)
	ActivateListingOrder(ctx context.Context, p ActivateListingOrderParams) (ListingOrder, error)
	SetListingOrderError(ctx context.Context, p SetListingOrderErrorParams) (ListingOrder, error)
	ListPaidUnactivatedOrders(ctx context.Context, limit int32) ([]ListingOrder, error)

	UpsertStripeEvent(ctx context.Context, p UpsertStripeEventParams) (StripeEvent, error)
	MarkStripeEventProcessed(ctx context.Context, stripeEventID string) (StripeEvent, error)
	MarkStripeEventFailed(ctx context.Context, p MarkStripeEventFailedParams) (StripeEvent, error)
}

var _ Querier = (*Queries)(nil)
