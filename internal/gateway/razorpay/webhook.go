// internal/gateway/razorpay/webhook.go
package razorpay

import (
	"encoding/json"
	"fmt"
)

// Webhook event kinds this service acts on. Anything else is acknowledged
// and ignored.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentLinkPaid = "payment_link.paid"
)

// Notification is the canonical view of a gateway webhook: the event kind
// plus the identifier triple extracted from whichever payload shape matched.
// Recognized is false when no shape matcher produced an identifier.
type Notification struct {
	Event         string
	OrderID       string
	PaymentID     string
	PaymentLinkID string
	Recognized    bool
}

// Actionable reports whether the event kind drives a completion attempt.
func (n *Notification) Actionable() bool {
	switch n.Event {
	case EventPaymentCaptured, EventOrderPaid, EventPaymentLinkPaid:
		return true
	}
	return false
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	Payload struct {
		OrderID string `json:"order_id"`
		Payment struct {
			ID      string `json:"id"`
			OrderID string `json:"order_id"`
			Entity  struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		PaymentLink struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment_link"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseWebhook normalizes a webhook body into a Notification. The payload
// shape varies by event type, so extraction runs an ordered list of shape
// matchers and the first one that matches wins:
//
//  1. payment entity      (payload.payment.entity)
//  2. flat payment        (payload.payment)
//  3. payment link entity (payload.payment_link.entity)
//  4. order entity        (payload.order.entity)
//  5. bare order id       (order_id at the top level or under payload)
func ParseWebhook(body []byte) (*Notification, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse webhook body: %w", err)
	}

	n := &Notification{Event: envelope.Event}
	p := envelope.Payload

	switch {
	case p.Payment.Entity.ID != "":
		n.PaymentID = p.Payment.Entity.ID
		n.OrderID = p.Payment.Entity.OrderID
		n.Recognized = true
	case p.Payment.ID != "":
		n.PaymentID = p.Payment.ID
		n.OrderID = p.Payment.OrderID
		n.Recognized = true
	case p.PaymentLink.Entity.ID != "":
		n.PaymentLinkID = p.PaymentLink.Entity.ID
		n.OrderID = p.PaymentLink.Entity.OrderID
		n.Recognized = true
	case p.Order.Entity.ID != "":
		n.OrderID = p.Order.Entity.ID
		n.Recognized = true
	case envelope.OrderID != "":
		n.OrderID = envelope.OrderID
		n.Recognized = true
	case p.OrderID != "":
		n.OrderID = p.OrderID
		n.Recognized = true
	}

	return n, nil
}
