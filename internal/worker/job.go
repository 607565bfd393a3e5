package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wxsfy/krowz/internal/db"
	"github.com/wxsfy/krowz/internal/email"
	"github.com/wxsfy/krowz/internal/store"
)

// Job holds the dependencies for the fulfilment pipeline.
type Job struct {
	q      db.Querier
	store  *store.Store
	mailer email.Sender
	logger *slog.Logger
}

// NewJob constructs a Job with all required dependencies.
func NewJob(
	q db.Querier,
	st *store.Store,
	mailer email.Sender,
	logger *slog.Logger,
) *Job {
	return &Job{
		q:      q,
		store:  st,
		mailer: mailer,
		logger: logger,
	}
}

// Run executes the full fulfilment pipeline for a single order:
//
//  1. Load the order and check it is still fulfillable.
//  2. Activate the listing atomically via store.ActivateOrder.
//  3. Send the merchant confirmation email.
//
// Any error is returned to the Runner, which will retry up to MaxRetries
// times before calling store.MarkOrderFailed.
func (j *Job) Run(ctx context.Context, orderID uuid.UUID) error {
	log := j.logger.With("order_id", orderID)
	log.Info("job: starting")

	order, err := j.q.GetListingOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("job: get order: %w", err)
	}

	switch order.Status {
	case db.ListingOrderStatusActive:
		// Duplicate enqueue (channel + poller can both deliver) — done already.
		log.Debug("job: order already active, nothing to do")
		return nil
	case db.ListingOrderStatusPaid:
		// fall through to fulfilment
	default:
		return fmt.Errorf("job: order %s is %s, not fulfillable", orderID, order.Status)
	}

	activated, err := j.store.ActivateOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("job: activate order: %w", err)
	}

	log.Info("job: listing activated",
		"merchant", activated.MerchantName,
		"plan", activated.PlanCode,
	)

	if err := j.mailer.SendListingConfirmation(ctx, email.ListingConfirmationParams{
		To:           activated.Email,
		MerchantName: activated.MerchantName,
		PlanCode:     activated.PlanCode,
		AmountCents:  activated.AmountCents,
		Currency:     activated.Currency,
	}); err != nil {
		// Email failure should not fail the job — the listing is live either
		// way. Log and move on; the merchant can be notified manually.
		log.Error("job: failed to send confirmation email",
			"to", activated.Email,
			"error", err,
		)
	}

	return nil
}
