package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient points a resendClient at a local httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*resendClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewResendClient("re_test_key", "hello@krowz.ca").(*resendClient)
	c.endpoint = srv.URL
	return c, srv
}

func TestSendContactMessage(t *testing.T) {
	var got resendRequest
	var gotAuth string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_abc"})
	})

	id, err := c.SendContactMessage(context.Background(), ContactMessageParams{
		Type:    "business",
		Name:    "Maria",
		Email:   "maria@example.com",
		Message: "How do I list my restaurant?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg_abc" {
		t.Errorf("id: got %q", id)
	}

	if gotAuth != "Bearer re_test_key" {
		t.Errorf("authorization: got %q", gotAuth)
	}
	if got.From != "Krowz <no-reply@krowz.ca>" {
		t.Errorf("from: got %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "hello@krowz.ca" {
		t.Errorf("to: got %v", got.To)
	}
	if got.ReplyTo != "maria@example.com" {
		t.Errorf("reply_to must be the submitter, got %q", got.ReplyTo)
	}
	if got.Subject != "[Krowz Contact] BUSINESS — Maria" {
		t.Errorf("subject: got %q", got.Subject)
	}
	wantText := "Name: Maria\nEmail: maria@example.com\nType: business\n\nMessage:\nHow do I list my restaurant?"
	if got.Text != wantText {
		t.Errorf("text:\ngot  %q\nwant %q", got.Text, wantText)
	}
}

func TestSendContactMessage_NoAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	c := NewResendClient("", "hello@krowz.ca").(*resendClient)
	c.endpoint = srv.URL

	_, err := c.SendContactMessage(context.Background(), ContactMessageParams{
		Type: "user", Name: "A", Email: "a@b.com", Message: "hi",
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if called {
		t.Error("no request should reach the provider without a key")
	}
}

func TestSendContactMessage_ProviderError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"name":       "validation_error",
				"message":    "Invalid to field",
				"statusCode": 422,
			},
		})
	})

	_, err := c.SendContactMessage(context.Background(), ContactMessageParams{
		Type: "user", Name: "A", Email: "a@b.com", Message: "hi",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "validation_error") {
		t.Errorf("error should carry the provider code, got %v", err)
	}
}

func TestSendListingConfirmation(t *testing.T) {
	var got resendRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_conf"})
	})

	err := c.SendListingConfirmation(context.Background(), ListingConfirmationParams{
		To:           "owner@cafe.ca",
		MerchantName: "Cafe Lumiere",
		PlanCode:     "featured",
		AmountCents:  9900,
		Currency:     "cad",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.To) != 1 || got.To[0] != "owner@cafe.ca" {
		t.Errorf("to: got %v", got.To)
	}
	if got.ReplyTo != "" {
		t.Errorf("confirmations carry no reply_to, got %q", got.ReplyTo)
	}
	if !strings.Contains(got.Subject, "Cafe Lumiere") {
		t.Errorf("subject: got %q", got.Subject)
	}
	if !strings.Contains(got.Text, "$99.00 CAD") {
		t.Errorf("text should state the amount, got %q", got.Text)
	}
	if !strings.Contains(got.Text, "featured") {
		t.Errorf("text should name the plan, got %q", got.Text)
	}
}
