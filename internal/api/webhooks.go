package api

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wxsfy/krowz/internal/store"
	stripeinternal "github.com/wxsfy/krowz/internal/stripe"
)

// ─── POST /api/webhooks/stripe ────────────────────────────────────────────────

// handleStripeWebhook is the entry point for all Stripe webhook deliveries.
//
// Stripe delivers events at-least-once and may retry on non-2xx responses.
// The handler must be idempotent: the event row is upserted first and a
// duplicate delivery (processed_at already set) is acknowledged immediately;
// store.MarkOrderPaid guards against double fulfilment on top of that.
//
// The only events acted on are:
//   - payment_intent.succeeded      → mark order paid + enqueue fulfilment
//   - payment_intent.payment_failed → mark order failed (informational)
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	// Read the raw body before anything else so the signature check runs
	// against the exact bytes Stripe signed.
	r.Body = http.MaxBytesReader(w, r.Body, 65536) // 64 KB — generous for any Stripe event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "could not read body")
		return
	}

	event, err := s.stripe.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Warn("webhook: signature verification failed", "error", err)
		respondErr(w, http.StatusBadRequest, "invalid signature")
		return
	}

	// Record the delivery. A replayed event returns the existing row with
	// processed_at set — acknowledge and stop.
	eventRow, err := s.q.UpsertStripeEvent(r.Context(), stripeinternal.ToUpsertParams(event, payload))
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("upsert stripe event: %w", err))
		return
	}
	if eventRow.ProcessedAt.Valid {
		s.logger.Debug("webhook: duplicate delivery", "event_id", event.ID, "type", event.Type)
		respond(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		s.handlePaymentSucceeded(w, r, event)
	case "payment_intent.payment_failed":
		s.handlePaymentFailed(w, r, event)
	default:
		// Not a type we act on. Acknowledge so Stripe stops retrying.
		s.markEventProcessed(r, event.ID)
		respond(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func (s *Server) handlePaymentSucceeded(w http.ResponseWriter, r *http.Request, event stripeinternal.Event) {
	piID, err := stripeinternal.ExtractPaymentIntentID(event)
	if err != nil {
		s.markEventFailed(r, event.ID, err)
		respondErr(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	order, err := s.store.MarkOrderPaid(r.Context(), piID)

	switch {
	case errors.Is(err, store.ErrOrderAlreadyPaid):
		// Duplicate delivery that slipped past the event-row guard. Fulfilment
		// is already underway (or done) — acknowledge.
		s.logger.Debug("webhook: order already paid", "pi", piID)
		s.markEventProcessed(r, event.ID)
		respond(w, http.StatusOK, map[string]bool{"received": true})
		return

	case errors.Is(err, sql.ErrNoRows):
		// A PI we never issued — possibly from another product sharing the
		// Stripe account. Log and acknowledge; retrying will not help.
		s.logger.Warn("webhook: no order for payment intent", "pi", piID)
		s.markEventProcessed(r, event.ID)
		respond(w, http.StatusOK, map[string]bool{"received": true})
		return

	case err != nil:
		s.markEventFailed(r, event.ID, err)
		s.respondInternalErr(w, r, fmt.Errorf("mark order paid: %w", err))
		return
	}

	// Hand off fulfilment. Enqueue failure is not fatal — the poller picks up
	// paid-but-inactive orders on its next cycle.
	if err := s.worker.Enqueue(r.Context(), order.ID); err != nil {
		s.logger.Warn("webhook: enqueue failed, poller will recover",
			"order_id", order.ID,
			"error", err,
		)
	}

	s.markEventProcessed(r, event.ID)
	respond(w, http.StatusOK, map[string]bool{"received": true})
}

func (s *Server) handlePaymentFailed(w http.ResponseWriter, r *http.Request, event stripeinternal.Event) {
	piID, err := stripeinternal.ExtractPaymentIntentID(event)
	if err != nil {
		s.markEventFailed(r, event.ID, err)
		respondErr(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	_, err = s.q.MarkListingOrderPaymentFailed(r.Context(), piID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.markEventFailed(r, event.ID, err)
		s.respondInternalErr(w, r, fmt.Errorf("mark payment failed: %w", err))
		return
	}

	s.markEventProcessed(r, event.ID)
	respond(w, http.StatusOK, map[string]bool{"received": true})
}

// markEventProcessed stamps the event row; failure to stamp is logged only —
// the worst case is one redundant reprocess attempt on redelivery.
func (s *Server) markEventProcessed(r *http.Request, eventID string) {
	if _, err := s.q.MarkStripeEventProcessed(r.Context(), eventID); err != nil {
		s.logger.Error("webhook: mark processed failed", "event_id", eventID, "error", err)
	}
}

func (s *Server) markEventFailed(r *http.Request, eventID string, cause error) {
	if _, err := s.q.MarkStripeEventFailed(r.Context(), stripeinternal.ToMarkFailedParams(eventID, cause)); err != nil {
		s.logger.Error("webhook: mark failed errored", "event_id", eventID, "error", err)
	}
}
