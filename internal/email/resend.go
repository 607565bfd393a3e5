package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// The sender identity is fixed — the domain is verified with Resend and
// nothing in the product needs to vary it.
const fromAddress = "Krowz <no-reply@krowz.ca>"

const defaultEndpoint = "https://api.resend.com/emails"

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	contactTo  string // destination for contact submissions, e.g. "hello@krowz.ca"
	endpoint   string
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
// apiKey may be empty; every send then fails with ErrNotConfigured.
func NewResendClient(apiKey, contactTo string) Sender {
	return &resendClient{
		apiKey:    apiKey,
		contactTo: contactTo,
		endpoint:  defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// SendContactMessage relays the submission to the contact inbox. Reply-to is
// the submitter's address so a plain reply in the mail client reaches them.
func (c *resendClient) SendContactMessage(ctx context.Context, p ContactMessageParams) (string, error) {
	subject := fmt.Sprintf("[Krowz Contact] %s — %s", strings.ToUpper(p.Type), p.Name)
	text := fmt.Sprintf("Name: %s\nEmail: %s\nType: %s\n\nMessage:\n%s",
		p.Name, p.Email, p.Type, p.Message)

	return c.send(ctx, resendRequest{
		From:    fromAddress,
		To:      []string{c.contactTo},
		ReplyTo: p.Email,
		Subject: subject,
		Text:    text,
	})
}

// SendListingConfirmation sends the "your listing is live" email.
func (c *resendClient) SendListingConfirmation(ctx context.Context, p ListingConfirmationParams) error {
	subject := fmt.Sprintf("Your Krowz listing is live — %s", p.MerchantName)
	amount := fmt.Sprintf("$%.2f %s", float64(p.AmountCents)/100, strings.ToUpper(p.Currency))
	text := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your payment of %s was received and your %s listing is now active.\n"+
			"Your deals will start appearing on Krowz within the hour.\n\n"+
			"Reply to this email if anything looks wrong.\n\n"+
			"— Krowz",
		p.MerchantName, amount, p.PlanCode)

	_, err := c.send(ctx, resendRequest{
		From:    fromAddress,
		To:      []string{p.To},
		Subject: subject,
		Text:    text,
	})
	return err
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, reqBody resendRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return parsed.ID, nil
}
