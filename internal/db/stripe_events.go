package db

import (
	"context"
	"database/sql"
	"encoding/json"
)

const stripeEventColumns = `stripe_event_id, type, payload, processed_at, error, created_at`

func scanStripeEvent(row rowScanner) (StripeEvent, error) {
	var e StripeEvent
	err := row.Scan(
		&e.StripeEventID,
		&e.Type,
		&e.Payload,
		&e.ProcessedAt,
		&e.Error,
		&e.CreatedAt,
	)
	return e, err
}

type UpsertStripeEventParams struct {
	StripeEventID string
	Type          string
	Payload       json.RawMessage
}

const upsertStripeEvent = `
INSERT INTO stripe_events (stripe_event_id, type, payload)
VALUES ($1, $2, $3)
ON CONFLICT (stripe_event_id) DO UPDATE SET stripe_event_id = EXCLUDED.stripe_event_id
RETURNING ` + stripeEventColumns

// UpsertStripeEvent records a webhook delivery. On a duplicate delivery the
// existing row is returned unchanged, so callers can inspect processed_at to
// detect replays.
func (q *Queries) UpsertStripeEvent(ctx context.Context, p UpsertStripeEventParams) (StripeEvent, error) {
	row := q.db.QueryRowContext(ctx, upsertStripeEvent, p.StripeEventID, p.Type, []byte(p.Payload))
	return scanStripeEvent(row)
}

const markStripeEventProcessed = `
UPDATE stripe_events
SET processed_at = now()
WHERE stripe_event_id = $1
RETURNING ` + stripeEventColumns

func (q *Queries) MarkStripeEventProcessed(ctx context.Context, stripeEventID string) (StripeEvent, error) {
	return scanStripeEvent(q.db.QueryRowContext(ctx, markStripeEventProcessed, stripeEventID))
}

type MarkStripeEventFailedParams struct {
	StripeEventID string
	Error         sql.NullString
}

const markStripeEventFailed = `
UPDATE stripe_events
SET error = $2
WHERE stripe_event_id = $1
RETURNING ` + stripeEventColumns

func (q *Queries) MarkStripeEventFailed(ctx context.Context, p MarkStripeEventFailedParams) (StripeEvent, error) {
	return scanStripeEvent(q.db.QueryRowContext(ctx, markStripeEventFailed, p.StripeEventID, p.Error))
}
