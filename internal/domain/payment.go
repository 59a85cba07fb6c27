// internal/domain/payment.go
package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentRecord tracks a single payment attempt for a plate. OrderID is the
// gateway-side order id and is unique across records. Status only moves
// pending -> completed or pending -> failed; completed is terminal, and
// PaidAt is set exactly once, on the pending -> completed transition.
type PaymentRecord struct {
	ID            int64         `json:"id" db:"id"`
	OrderID       string        `json:"order_id" db:"order_id"`
	Plate         string        `json:"plate" db:"plate"`
	Amount        float64       `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        PaymentStatus `json:"status" db:"status"`
	PaymentID     *string       `json:"payment_id,omitempty" db:"payment_id"`
	PaymentLinkID *string       `json:"payment_link_id,omitempty" db:"payment_link_id"`
	PaymentURL    string        `json:"payment_url,omitempty" db:"payment_url"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
}

// GuestLedgerEntry is the append-only record of a completed ad-hoc payment.
// (plate, order_id) is unique; the order id doubles as the idempotency key,
// so re-recording the same completion is a no-op.
type GuestLedgerEntry struct {
	ID        int64     `json:"id" db:"id"`
	Plate     string    `json:"plate" db:"plate"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Amount    float64   `json:"amount" db:"amount"`
	PaymentID string    `json:"payment_id" db:"payment_id"`
	PaidAt    time.Time `json:"paid_at" db:"paid_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NormalizePlate uppercases a detected plate and strips everything that is
// not a letter or digit, mirroring the cleanup the camera agent applies
// before submitting a plate.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
