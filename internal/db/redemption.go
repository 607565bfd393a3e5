package db

import (
	"context"
	"encoding/json"
	"fmt"
)

const consumeRedemption = `SELECT consume_redemption($1)`

// ConsumeRedemption calls the stored procedure and returns its JSON result
// verbatim. The token is passed through untouched — no client-side
// normalisation or validation of its structure.
func (q *Queries) ConsumeRedemption(ctx context.Context, token string) (json.RawMessage, error) {
	var raw []byte
	if err := q.db.QueryRowContext(ctx, consumeRedemption, token).Scan(&raw); err != nil {
		return nil, fmt.Errorf("consume_redemption: %w", err)
	}
	return json.RawMessage(raw), nil
}
