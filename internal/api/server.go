// Package api implements the HTTP layer for the Krowz site. Handlers are
// methods on *Server. Each handler file is responsible for one resource
// group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wxsfy/krowz/internal/db"
	"github.com/wxsfy/krowz/internal/email"
	"github.com/wxsfy/krowz/internal/redemption"
	stripeinternal "github.com/wxsfy/krowz/internal/stripe"
	"github.com/wxsfy/krowz/internal/worker"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// BaseURL is the public origin of the site, e.g. "https://krowz.ca".
	BaseURL string

	// StripeWebhookSecret is the signing secret from the Stripe dashboard.
	StripeWebhookSecret string

	// Env is "production", "staging", or "development".
	Env string
}

// OrderStore is the subset of *store.Store the webhook handler uses.
// Tests inject a stub.
type OrderStore interface {
	MarkOrderPaid(ctx context.Context, stripePaymentIntent string) (db.ListingOrder, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// q handles all single-query reads. Injected directly — no repo wrapper.
	q db.Querier

	// store handles multi-step atomic writes.
	store OrderStore

	// verifier invokes the consume_redemption procedure.
	verifier redemption.Verifier

	// stripe creates PaymentIntents and verifies webhook signatures.
	stripe stripeinternal.Client

	// worker enqueues fulfilment jobs after payment confirmation.
	worker worker.Enqueuer

	// mailer relays contact submissions via Resend.
	mailer email.Sender

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	q db.Querier,
	st OrderStore,
	verifier redemption.Verifier,
	stripeClient stripeinternal.Client,
	enqueuer worker.Enqueuer,
	mailer email.Sender,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		q:        q,
		store:    st,
		verifier: verifier,
		stripe:   stripeClient,
		worker:   enqueuer,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		// Contact relay — public, no auth, no rate limiting.
		r.Post("/contact", s.handleContact)

		// Redemption — invoked from the staff verify page. The token is the
		// only credential; its validity is decided by consume_redemption.
		r.Post("/redeem/{token}", s.handleRedeem)

		// Merchant listing checkout.
		r.Post("/merchants/checkout", s.handleMerchantCheckout)
		r.Get("/merchants/orders/{orderID}", s.handleGetOrder)

		// Stripe webhook — no auth (signature verification inside handler).
		r.Post("/webhooks/stripe", s.handleStripeWebhook)
	})

	// ── Pages ─────────────────────────────────────────────────────────────────
	r.Get("/", s.handleLanding)

	// Staff verify page. Tokens are single-use: never indexed, never cached.
	r.Route("/r", func(r chi.Router) {
		r.Use(noIndexNoStore)
		r.Get("/", s.handleVerifyPage) // no token — redeem control stays disabled
		r.Get("/{token}", s.handleVerifyPage)
	})

	return r
}
