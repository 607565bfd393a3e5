package api

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/wxsfy/krowz/internal/db"
	stripeinternal "github.com/wxsfy/krowz/internal/stripe"
)

// ─── POST /api/merchants/checkout ────────────────────────────────────────────

// Listing plans. Prices are fixed in CAD cents; the plan only changes how
// prominently the merchant's deals surface on the site.
var listingPlans = map[string]int64{
	"standard": 4900,
	"featured": 9900,
}

const defaultPlan = "standard"

type merchantCheckoutRequest struct {
	MerchantName string `json:"merchant_name"`
	Email        string `json:"email"`
	PlanCode     string `json:"plan_code,omitempty"`
}

type merchantCheckoutResponse struct {
	// OrderID is the handle for polling order status. Unguessable (uuid v4),
	// so it doubles as the access credential, like a report token.
	OrderID string `json:"order_id"`
	// ClientSecret is the Stripe PaymentIntent client_secret. The browser
	// passes this to Stripe.js to render the payment UI and confirm the charge.
	ClientSecret string `json:"client_secret"`
}

// handleMerchantCheckout creates a listing order and a Stripe PaymentIntent
// for it, returning the client_secret to the browser. The order stays pending
// until the payment_intent.succeeded webhook arrives.
func (s *Server) handleMerchantCheckout(w http.ResponseWriter, r *http.Request) {
	var req merchantCheckoutRequest
	if !decode(w, r, &req) {
		return
	}

	if req.MerchantName == "" || req.Email == "" {
		respondErr(w, http.StatusBadRequest, "merchant_name and email are required")
		return
	}

	plan := req.PlanCode
	if plan == "" {
		plan = defaultPlan
	}
	amount, ok := listingPlans[plan]
	if !ok {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf("unknown plan_code %q", plan))
		return
	}

	order, err := s.q.CreateListingOrder(r.Context(), db.CreateListingOrderParams{
		MerchantName: req.MerchantName,
		Email:        req.Email,
		PlanCode:     plan,
		AmountCents:  amount,
		Currency:     "cad",
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create listing order: %w", err))
		return
	}

	pi, err := s.stripe.CreatePaymentIntent(r.Context(), stripeinternal.CreatePaymentIntentParams{
		AmountCents: amount,
		Currency:    "cad",
		Email:       req.Email,
		Metadata: map[string]string{
			"order_id": order.ID.String(),
		},
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create payment intent: %w", err))
		return
	}

	// Attach the PI so the webhook can find the order by payment intent id.
	// If this write fails the PI expires unused in Stripe after 24h — an
	// acceptable cost for this rare failure.
	_, err = s.q.AttachStripePayment(r.Context(), db.AttachStripePaymentParams{
		ID:                  order.ID,
		StripeCustomerID:    sql.NullString{String: pi.CustomerID, Valid: pi.CustomerID != ""},
		StripePaymentIntent: sql.NullString{String: pi.ID, Valid: true},
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("attach payment intent: %w", err))
		return
	}

	respond(w, http.StatusOK, merchantCheckoutResponse{
		OrderID:      order.ID.String(),
		ClientSecret: pi.ClientSecret,
	})
}
