// Package events publishes domain events after the owning transaction has
// committed. Delivery is best effort: a failed publish is logged and
// counted, never surfaced to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TypeInvoicePosted           = "invoice.posted"
	TypeReceiptCreated          = "receipt.created"
	TypePurchasePosted          = "purchase.posted"
	TypePaymentCreated          = "payment.created"
	TypePosSalePosted           = "pos_sale.posted"
	TypeJournalPosted           = "journal.posted"
	TypeReconciliationCompleted = "reconciliation.completed"
)

// Event is the envelope shared by every publisher.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	TenantID    string         `json:"tenant_id"`
	AggregateID string         `json:"aggregate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
