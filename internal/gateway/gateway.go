// internal/gateway/gateway.go
package gateway

import (
	"context"
	"time"
)

// Client defines the interface the payment gateway implementation must satisfy.
// All calls are synchronous and bounded by the HTTP client timeout; callers
// treat failures as "no answer", never as settlement truth.
type Client interface {
	// CreateOrder registers an amount to be collected once and returns the order.
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error)

	// FetchOrder returns the current gateway-side view of an order.
	FetchOrder(ctx context.Context, orderID string) (*Order, error)

	// FetchOrderPayments returns the payments attached to an order.
	FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error)

	// CreatePaymentLink creates a hosted payment page for the amount.
	CreatePaymentLink(ctx context.Context, amountPaise int64, description, referenceID, callbackURL string) (*PaymentLink, error)

	// FetchPaymentLink returns the link status and the payments made through it.
	FetchPaymentLink(ctx context.Context, linkID string) (*PaymentLink, error)

	// ListRecentPayments returns the most recent payments account-wide.
	ListRecentPayments(ctx context.Context, count int) ([]Payment, error)
}

// Order statuses as reported by the gateway.
const (
	OrderStatusCreated   = "created"
	OrderStatusAttempted = "attempted"
	OrderStatusPaid      = "paid"
)

// Payment statuses indicating funds have been secured.
const (
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
)

const LinkStatusPaid = "paid"

type Order struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
	Receipt  string
}

type Payment struct {
	ID        string
	OrderID   string
	Amount    int64
	Status    string
	CreatedAt time.Time
}

type PaymentLink struct {
	ID       string
	OrderID  string
	Status   string
	ShortURL string
	Payments []Payment
}

// IsSettled reports whether a payment status means funds are secured.
func IsSettled(status string) bool {
	return status == PaymentStatusCaptured || status == PaymentStatusAuthorized
}
