package store_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/wxsfy/krowz/internal/db"
	"github.com/wxsfy/krowz/internal/store"
)

// openTestDB connects to the database named by DATABASE_URL and skips the
// test when it is unset. These tests exercise real transactions and need the
// listing_orders schema applied.
func openTestDB(t *testing.T) (*sql.DB, *db.Queries) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping store integration tests")
	}

	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		t.Fatalf("ping database: %v", err)
	}

	return pool, db.New(pool)
}

// seedOrder inserts a pending order with a fresh payment intent and registers
// cleanup.
func seedOrder(t *testing.T, pool *sql.DB, q *db.Queries) db.ListingOrder {
	t.Helper()
	ctx := context.Background()

	order, err := q.CreateListingOrder(ctx, db.CreateListingOrderParams{
		MerchantName: "Test Cafe",
		Email:        "owner@test.example",
		PlanCode:     "standard",
		AmountCents:  4900,
		Currency:     "cad",
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec("DELETE FROM listing_orders WHERE id = $1", order.ID)
	})

	order, err = q.AttachStripePayment(ctx, db.AttachStripePaymentParams{
		ID:                  order.ID,
		StripePaymentIntent: sql.NullString{String: "pi_test_" + uuid.NewString(), Valid: true},
	})
	if err != nil {
		t.Fatalf("attach payment intent: %v", err)
	}
	return order
}

func TestMarkOrderPaid(t *testing.T) {
	pool, q := openTestDB(t)
	s := store.New(pool, q)
	ctx := context.Background()

	order := seedOrder(t, pool, q)
	pi := order.StripePaymentIntent.String

	paid, err := s.MarkOrderPaid(ctx, pi)
	if err != nil {
		t.Fatalf("MarkOrderPaid: %v", err)
	}
	if paid.Status != db.ListingOrderStatusPaid {
		t.Errorf("status: got %q, want paid", paid.Status)
	}
	if !paid.PaidAt.Valid {
		t.Error("paid_at should be set")
	}

	// Duplicate delivery returns the existing order with the sentinel.
	again, err := s.MarkOrderPaid(ctx, pi)
	if !errors.Is(err, store.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
	if again.ID != order.ID {
		t.Errorf("duplicate call should return the existing order, got %s", again.ID)
	}
}

func TestMarkOrderPaid_UnknownPaymentIntent(t *testing.T) {
	pool, q := openTestDB(t)
	s := store.New(pool, q)

	_, err := s.MarkOrderPaid(context.Background(), "pi_never_issued_"+uuid.NewString())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows in chain, got %v", err)
	}
}

func TestActivateOrder(t *testing.T) {
	pool, q := openTestDB(t)
	s := store.New(pool, q)
	ctx := context.Background()

	order := seedOrder(t, pool, q)
	if _, err := s.MarkOrderPaid(ctx, order.StripePaymentIntent.String); err != nil {
		t.Fatalf("MarkOrderPaid: %v", err)
	}

	activated, err := s.ActivateOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("ActivateOrder: %v", err)
	}
	if activated.Status != db.ListingOrderStatusActive {
		t.Errorf("status: got %q, want active", activated.Status)
	}
	if !activated.ActivatedAt.Valid {
		t.Error("activated_at should be set")
	}
	if !activated.Fulfilment.Valid {
		t.Error("fulfilment snapshot should be written")
	}

	// A second activation is a no-op, not an error.
	again, err := s.ActivateOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("repeat ActivateOrder: %v", err)
	}
	if again.Status != db.ListingOrderStatusActive {
		t.Errorf("repeat status: got %q", again.Status)
	}
}

func TestActivateOrder_NotPaid(t *testing.T) {
	pool, q := openTestDB(t)
	s := store.New(pool, q)

	order := seedOrder(t, pool, q) // still pending
	if _, err := s.ActivateOrder(context.Background(), order.ID); err == nil {
		t.Fatal("activating an unpaid order must fail")
	}
}

func TestMarkOrderFailed(t *testing.T) {
	pool, q := openTestDB(t)
	s := store.New(pool, q)

	order := seedOrder(t, pool, q)
	failed, err := s.MarkOrderFailed(context.Background(), order.ID, "fulfilment retries exhausted")
	if err != nil {
		t.Fatalf("MarkOrderFailed: %v", err)
	}
	if failed.Status != db.ListingOrderStatusError {
		t.Errorf("status: got %q, want error", failed.Status)
	}
	if !failed.ErrorMessage.Valid || failed.ErrorMessage.String != "fulfilment retries exhausted" {
		t.Errorf("error_message: got %+v", failed.ErrorMessage)
	}
}
