package redemption_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/wxsfy/krowz/internal/db"
	"github.com/wxsfy/krowz/internal/redemption"
)

// stubQuerier returns a canned ConsumeRedemption result.
type stubQuerier struct {
	db.Querier

	raw    json.RawMessage
	err    error
	tokens []string
}

func (q *stubQuerier) ConsumeRedemption(_ context.Context, token string) (json.RawMessage, error) {
	q.tokens = append(q.tokens, token)
	return q.raw, q.err
}

func TestReasonMessage(t *testing.T) {
	tests := []struct {
		reason redemption.Reason
		want   string
	}{
		{redemption.ReasonNotFound, "Invalid code."},
		{redemption.ReasonExpired, "This QR code expired."},
		{redemption.ReasonAlreadyRedeemed, "Already redeemed."},
		{redemption.ReasonLimitMonthly, "Monthly limit reached for this user."},
		{redemption.ReasonLimitMerchantMonthly, "Monthly limit reached for this restaurant (3)."},
		{redemption.ReasonServerError, "Server error. Try again."},
		{redemption.Reason("fraud_hold"), "Denied."},
		{redemption.Reason(""), "Denied."},
	}

	for _, tt := range tests {
		if got := tt.reason.Message(); got != tt.want {
			t.Errorf("Message(%q): got %q, want %q", tt.reason, got, tt.want)
		}
	}
}

func TestMessagesCoversAllKnownReasons(t *testing.T) {
	m := redemption.Messages()
	if len(m) != 6 {
		t.Fatalf("expected 6 entries, got %d: %v", len(m), m)
	}
	for reason, msg := range m {
		if msg != reason.Message() {
			t.Errorf("%q: table has %q, Message() says %q", reason, msg, reason.Message())
		}
		if msg == "Denied." {
			t.Errorf("%q maps to the fallback message, should have its own", reason)
		}
	}
}

func TestDenied(t *testing.T) {
	out := redemption.Denied(redemption.ReasonExpired)
	if out.OK {
		t.Error("Denied outcome must have ok=false")
	}
	if out.Reason != redemption.ReasonExpired {
		t.Errorf("reason: got %q", out.Reason)
	}
}

func TestConsume_Approved(t *testing.T) {
	q := &stubQuerier{raw: json.RawMessage(`{"ok": true}`)}
	v := redemption.NewVerifier(q)

	out, err := v.Consume(context.Background(), "xyz789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Error("expected ok=true")
	}
	if out.Reason != "" {
		t.Errorf("reason should be empty, got %q", out.Reason)
	}
	if len(q.tokens) != 1 || q.tokens[0] != "xyz789" {
		t.Errorf("token must be forwarded verbatim, got %v", q.tokens)
	}
}

func TestConsume_Denied(t *testing.T) {
	q := &stubQuerier{raw: json.RawMessage(`{"ok": false, "reason": "expired"}`)}
	v := redemption.NewVerifier(q)

	out, err := v.Consume(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OK {
		t.Error("expected ok=false")
	}
	if out.Reason != redemption.ReasonExpired {
		t.Errorf("reason: got %q, want expired", out.Reason)
	}
}

func TestConsume_UnknownReasonPassesThrough(t *testing.T) {
	q := &stubQuerier{raw: json.RawMessage(`{"ok": false, "reason": "limit_daily_reached"}`)}
	v := redemption.NewVerifier(q)

	out, err := v.Consume(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Reason != redemption.Reason("limit_daily_reached") {
		t.Errorf("unknown reason must pass through untouched, got %q", out.Reason)
	}
}

func TestConsume_QueryErrorIsReturned(t *testing.T) {
	dbErr := errors.New("pq: connection reset")
	q := &stubQuerier{err: dbErr}
	v := redemption.NewVerifier(q)

	_, err := v.Consume(context.Background(), "abc123")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("cause must be wrapped, got %v", err)
	}
}

func TestConsume_MalformedResultIsAnError(t *testing.T) {
	q := &stubQuerier{raw: json.RawMessage(`not json at all`)}
	v := redemption.NewVerifier(q)

	if _, err := v.Consume(context.Background(), "abc123"); err == nil {
		t.Fatal("expected a decode error")
	}
}
