package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
	"github.com/wxsfy/krowz/internal/db"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrOrderAlreadyPaid is returned by MarkOrderPaid when the order was already
// marked paid (or activated) by a prior webhook delivery. The webhook handler
// should treat this as idempotent success and return HTTP 200 to Stripe — a
// duplicate payment_intent.succeeded must not restart fulfilment.
var ErrOrderAlreadyPaid = errors.New("store: order already marked paid")

// ─── METHODS ─────────────────────────────────────────────────────────────────

// MarkOrderPaid is called by the Stripe webhook handler on
// payment_intent.succeeded. It atomically:
//
//  1. Loads the order by its PaymentIntent (idempotency guard).
//  2. Marks it paid if it is still pending.
//
// If the order was already paid or activated (duplicate delivery), the
// existing order is returned with ErrOrderAlreadyPaid. If the guard read
// succeeds but the update fails, the transaction rolls back and the next
// webhook delivery retries cleanly.
func (s *Store) MarkOrderPaid(ctx context.Context, stripePaymentIntent string) (db.ListingOrder, error) {
	var order db.ListingOrder

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := q.GetListingOrderByPaymentIntent(ctx, stripePaymentIntent)
		if err != nil {
			return fmt.Errorf("MarkOrderPaid: get order: %w", err)
		}

		switch existing.Status {
		case db.ListingOrderStatusPaid, db.ListingOrderStatusActive:
			order = existing
			return ErrOrderAlreadyPaid
		}

		updated, err := q.MarkListingOrderPaid(ctx, stripePaymentIntent)
		if err != nil {
			return fmt.Errorf("MarkOrderPaid: mark paid: %w", err)
		}

		order = updated
		return nil
	})

	// Unwrap the sentinel so callers can check with errors.Is without needing
	// to look inside a wrapped error chain.
	if errors.Is(err, ErrOrderAlreadyPaid) {
		return order, ErrOrderAlreadyPaid
	}
	if err != nil {
		return db.ListingOrder{}, err
	}

	return order, nil
}

// FulfilmentSnapshot is the jsonb record written when a listing goes live.
type FulfilmentSnapshot struct {
	PlanCode    string    `json:"plan_code"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ActivatedAt time.Time `json:"activated_at"`
}

// ActivateOrder is called by the worker once fulfilment is complete. It
// atomically re-checks the order state and writes the activation plus the
// fulfilment snapshot, so two workers racing on the same order cannot both
// activate it.
func (s *Store) ActivateOrder(ctx context.Context, orderID uuid.UUID) (db.ListingOrder, error) {
	var order db.ListingOrder

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := q.GetListingOrderByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("ActivateOrder: get order: %w", err)
		}

		if existing.Status == db.ListingOrderStatusActive {
			// Another worker finished first — nothing to do.
			order = existing
			return nil
		}
		if existing.Status != db.ListingOrderStatusPaid {
			return fmt.Errorf("ActivateOrder: order %s is %s, not paid", orderID, existing.Status)
		}

		snapshot, err := json.Marshal(FulfilmentSnapshot{
			PlanCode:    existing.PlanCode,
			AmountCents: existing.AmountCents,
			Currency:    existing.Currency,
			ActivatedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("ActivateOrder: marshal snapshot: %w", err)
		}

		activated, err := q.ActivateListingOrder(ctx, db.ActivateListingOrderParams{
			ID: orderID,
			Fulfilment: pqtype.NullRawMessage{
				RawMessage: snapshot,
				Valid:      true,
			},
		})
		if err != nil {
			return fmt.Errorf("ActivateOrder: activate: %w", err)
		}

		order = activated
		return nil
	})

	if err != nil {
		return db.ListingOrder{}, err
	}

	return order, nil
}

// MarkOrderFailed sets the order status to error with a descriptive message.
// Called by the worker when fulfilment fails permanently (i.e. after
// exhausting retries). A single-query write — no transaction needed — but it
// lives here because it is logically part of the order lifecycle.
func (s *Store) MarkOrderFailed(ctx context.Context, orderID uuid.UUID, reason string) (db.ListingOrder, error) {
	order, err := s.q.SetListingOrderError(ctx, db.SetListingOrderErrorParams{
		ID: orderID,
		ErrorMessage: sql.NullString{
			String: reason,
			Valid:  true,
		},
	})
	if err != nil {
		return db.ListingOrder{}, fmt.Errorf("MarkOrderFailed: %w", err)
	}
	return order, nil
}
