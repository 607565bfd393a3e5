package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wxsfy/krowz/internal/db"
)

// ─── GET /api/merchants/orders/{orderID} ─────────────────────────────────────

type orderResponse struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	MerchantName string `json:"merchant_name"`
	PlanCode     string `json:"plan_code"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	ActivatedAt  string `json:"activated_at,omitempty"`
}

// handleGetOrder reports the state of a listing order. The order id is an
// unguessable uuid handed out at checkout — no further authentication.
//
// Returns 404 for an unknown id. Returns 202 while the order is still moving
// through payment and fulfilment so the frontend can poll, and 200 once it
// reaches a terminal state (active, payment_failed, or error).
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := s.q.GetListingOrderByID(r.Context(), orderID)
	if errors.Is(err, sql.ErrNoRows) {
		respondErr(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("get order: %w", err))
		return
	}

	switch order.Status {
	case db.ListingOrderStatusPending, db.ListingOrderStatusPaid:
		respond(w, http.StatusAccepted, map[string]string{
			"status":  string(order.Status),
			"message": "order is being processed, please check back shortly",
		})
		return
	}

	activatedAt := ""
	if order.ActivatedAt.Valid {
		activatedAt = order.ActivatedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}

	respond(w, http.StatusOK, orderResponse{
		OrderID:      order.ID.String(),
		Status:       string(order.Status),
		MerchantName: order.MerchantName,
		PlanCode:     order.PlanCode,
		AmountCents:  order.AmountCents,
		Currency:     order.Currency,
		ActivatedAt:  activatedAt,
	})
}
