// Package redemption defines the external contract of the consume_redemption
// procedure: one operation, token in, discriminated outcome out. The
// procedure itself — expiry windows, per-user and per-merchant monthly caps,
// once-only consumption — is authoritative on the database side; nothing in
// this package re-implements or second-guesses those rules.
package redemption

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wxsfy/krowz/internal/db"
)

// Reason is a denial code returned by consume_redemption.
type Reason string

const (
	ReasonNotFound             Reason = "not_found"
	ReasonExpired              Reason = "expired"
	ReasonAlreadyRedeemed      Reason = "already_redeemed"
	ReasonLimitMonthly         Reason = "limit_monthly_reached"
	ReasonLimitMerchantMonthly Reason = "limit_merchant_monthly_reached"
	ReasonServerError          Reason = "server_error"
)

// Message returns the staff-facing text for a denial reason. Codes the
// procedure may add in the future fall through to a generic message rather
// than breaking the verify page.
func (r Reason) Message() string {
	switch r {
	case ReasonNotFound:
		return "Invalid code."
	case ReasonExpired:
		return "This QR code expired."
	case ReasonAlreadyRedeemed:
		return "Already redeemed."
	case ReasonLimitMonthly:
		return "Monthly limit reached for this user."
	case ReasonLimitMerchantMonthly:
		return "Monthly limit reached for this restaurant (3)."
	case ReasonServerError:
		return "Server error. Try again."
	default:
		return "Denied."
	}
}

// Messages returns the full reason→message table, used to render the verify
// page's client-side mapping from a single source of truth.
func Messages() map[Reason]string {
	reasons := []Reason{
		ReasonNotFound,
		ReasonExpired,
		ReasonAlreadyRedeemed,
		ReasonLimitMonthly,
		ReasonLimitMerchantMonthly,
		ReasonServerError,
	}
	m := make(map[Reason]string, len(reasons))
	for _, r := range reasons {
		m[r] = r.Message()
	}
	return m
}

// Outcome is the discriminated result of a redemption attempt.
// Either OK is true and Reason is empty, or OK is false and Reason carries
// the denial code.
type Outcome struct {
	OK     bool   `json:"ok"`
	Reason Reason `json:"reason,omitempty"`
}

// Denied builds a denial outcome.
func Denied(reason Reason) Outcome {
	return Outcome{OK: false, Reason: reason}
}

// Verifier is the abstract contract of the remote procedure: token in,
// outcome out. Tests inject a stub; production uses the Postgres-backed
// implementation below.
type Verifier interface {
	Consume(ctx context.Context, token string) (Outcome, error)
}

// dbVerifier invokes consume_redemption through the deals database.
type dbVerifier struct {
	q db.Querier
}

// NewVerifier returns a Verifier backed by the consume_redemption procedure.
func NewVerifier(q db.Querier) Verifier {
	return &dbVerifier{q: q}
}

// Consume forwards the token verbatim and decodes the procedure's JSON
// result. A transport or decode failure is returned as an error — the caller
// maps it to a server_error denial so staff always reach a terminal state.
func (v *dbVerifier) Consume(ctx context.Context, token string) (Outcome, error) {
	raw, err := v.q.ConsumeRedemption(ctx, token)
	if err != nil {
		return Outcome{}, fmt.Errorf("redemption: %w", err)
	}

	var out Outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return Outcome{}, fmt.Errorf("redemption: decode result %.100q: %w", string(raw), err)
	}
	return out, nil
}
