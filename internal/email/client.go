// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when RESEND_API_KEY is absent. The contact
// handler maps it to a 500 without any network call having been made.
var ErrNotConfigured = errors.New("email: RESEND_API_KEY is not configured")

// ContactMessageParams holds a contact form submission to relay.
type ContactMessageParams struct {
	Type    string // "business" | "user"
	Name    string
	Email   string // submitter address — becomes the reply-to
	Message string
}

// ListingConfirmationParams holds the data for the merchant listing
// activation email.
type ListingConfirmationParams struct {
	To           string
	MerchantName string
	PlanCode     string
	AmountCents  int64
	Currency     string // e.g. "cad"
}

// Sender is the interface the api and worker packages use to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendContactMessage relays a contact submission to the site owner and
	// returns the provider's message id.
	SendContactMessage(ctx context.Context, p ContactMessageParams) (string, error)

	// SendListingConfirmation tells a merchant their listing is live. Called
	// by the worker after the order is activated.
	SendListingConfirmation(ctx context.Context, p ListingConfirmationParams) error
}
