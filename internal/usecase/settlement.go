// internal/usecase/settlement.go
package usecase

import (
	"context"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/mailbox"
	"parking-gate-service/internal/repository"

	"go.uber.org/zap"
)

// GateReasonPayment marks gate signals armed by a completed payment.
const GateReasonPayment = "payment"

// settlement is the shared completion path behind both the webhook ingress
// and the polling reconciliation engine. Whichever path observes the gateway
// truth first routes through complete; the atomic TryComplete transition
// picks a single winner, and only the winner writes the guest ledger and
// arms the gate mailbox.
type settlement struct {
	records repository.PaymentRecordRepository
	ledger  repository.GuestLedgerRepository
	gate    *mailbox.Mailbox
	logger  *zap.Logger
}

func (s *settlement) complete(ctx context.Context, record *domain.PaymentRecord, paymentID string) error {
	paidAt, won, err := s.records.TryComplete(ctx, record.OrderID, paymentID)
	if err != nil {
		s.logger.Error("completion transition failed",
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return err
	}

	if !won {
		// Another path already completed this order. Report completed, skip
		// side effects.
		s.logger.Info("order already completed by a concurrent path",
			zap.String("order_id", record.OrderID),
			zap.String("plate", record.Plate))
		record.Status = domain.PaymentStatusCompleted
		return nil
	}

	record.Status = domain.PaymentStatusCompleted
	record.PaidAt = &paidAt
	if paymentID != "" {
		record.PaymentID = &paymentID
	}

	inserted, err := s.ledger.RecordIfAbsent(ctx, record.Plate, record.OrderID, record.Amount, paymentID, paidAt)
	if err != nil {
		// The completion itself is durable; the ledger write can be replayed
		// safely because it is idempotent on (plate, order_id).
		s.logger.Error("failed to write guest ledger entry",
			zap.String("order_id", record.OrderID),
			zap.String("plate", record.Plate),
			zap.Error(err))
	} else if !inserted {
		s.logger.Warn("guest ledger entry already present",
			zap.String("order_id", record.OrderID),
			zap.String("plate", record.Plate))
	}

	s.gate.Set(record.Plate, GateReasonPayment)

	s.logger.Info("payment completed, gate signal armed",
		zap.String("order_id", record.OrderID),
		zap.String("plate", record.Plate),
		zap.String("payment_id", paymentID),
		zap.Float64("amount", record.Amount))

	return nil
}
