package stripe

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestToUpsertParams(t *testing.T) {
	event := Event{ID: "evt_123", Type: "payment_intent.succeeded"}
	payload := []byte(`{"id": "evt_123", "data": {}}`)

	p := ToUpsertParams(event, payload)
	if p.StripeEventID != "evt_123" {
		t.Errorf("StripeEventID: got %q", p.StripeEventID)
	}
	if p.Type != "payment_intent.succeeded" {
		t.Errorf("Type: got %q", p.Type)
	}
	if string(p.Payload) != string(payload) {
		t.Errorf("Payload must be the raw delivery bytes, got %s", p.Payload)
	}
}

func TestToMarkFailedParams(t *testing.T) {
	p := ToMarkFailedParams("evt_123", errors.New("no order for payment intent"))
	if p.StripeEventID != "evt_123" {
		t.Errorf("StripeEventID: got %q", p.StripeEventID)
	}
	if !p.Error.Valid || p.Error.String != "no order for payment intent" {
		t.Errorf("Error: got %+v", p.Error)
	}
}

func TestExtractPaymentIntentID(t *testing.T) {
	event := Event{
		ID:      "evt_123",
		Type:    "payment_intent.succeeded",
		DataRaw: json.RawMessage(`{"id": "pi_abc", "amount": 4900, "currency": "cad"}`),
	}

	id, err := ExtractPaymentIntentID(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "pi_abc" {
		t.Errorf("id: got %q", id)
	}
}

func TestExtractPaymentIntentID_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `garbage`},
		{"missing id", `{"amount": 4900}`},
		{"empty id", `{"id": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{ID: "evt_bad", DataRaw: json.RawMessage(tt.raw)}
			if _, err := ExtractPaymentIntentID(event); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
