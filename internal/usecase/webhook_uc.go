// internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/gateway/razorpay"
	"parking-gate-service/internal/mailbox"
	"parking-gate-service/internal/repository"
	"parking-gate-service/pkg/security"

	"go.uber.org/zap"
)

// WebhookUsecase applies asynchronous gateway notifications: verify the
// signature over the raw body, normalize the payload into the identifier
// triple, resolve the record, and feed the same completion transition the
// polling path uses.
type WebhookUsecase struct {
	records repository.PaymentRecordRepository
	settle  *settlement
	secret  string
	logger  *zap.Logger
}

func NewWebhookUsecase(
	records repository.PaymentRecordRepository,
	ledger repository.GuestLedgerRepository,
	gate *mailbox.Mailbox,
	webhookSecret string,
	logger *zap.Logger,
) *WebhookUsecase {
	return &WebhookUsecase{
		records: records,
		settle: &settlement{
			records: records,
			ledger:  ledger,
			gate:    gate,
			logger:  logger,
		},
		secret: webhookSecret,
		logger: logger,
	}
}

// Process handles one webhook delivery. Rejections (bad signature, malformed
// body) make no state change. Events this service cannot match to a record
// are acknowledged with a warning so the gateway does not keep redelivering
// them.
func (uc *WebhookUsecase) Process(ctx context.Context, body []byte, signature string) error {
	if uc.secret != "" {
		if !security.VerifySignature(body, signature, uc.secret) {
			uc.logger.Warn("webhook signature verification failed",
				zap.Int("payload_size", len(body)))
			return domain.ErrInvalidSignature
		}
	} else {
		uc.logger.Warn("processing webhook without signature verification")
	}

	notification, err := razorpay.ParseWebhook(body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if !notification.Actionable() {
		uc.logger.Debug("ignoring webhook event",
			zap.String("event", notification.Event))
		return nil
	}

	if !notification.Recognized {
		uc.logger.Warn("webhook payload shape not recognized",
			zap.String("event", notification.Event))
		return nil
	}

	uc.logger.Info("webhook event normalized",
		zap.String("event", notification.Event),
		zap.String("order_id", notification.OrderID),
		zap.String("payment_id", notification.PaymentID),
		zap.String("payment_link_id", notification.PaymentLinkID))

	record, err := uc.resolveRecord(ctx, notification)
	if err != nil {
		return err
	}
	if record == nil {
		uc.logger.Warn("no payment record matches webhook event",
			zap.String("event", notification.Event),
			zap.String("order_id", notification.OrderID),
			zap.String("payment_id", notification.PaymentID),
			zap.String("payment_link_id", notification.PaymentLinkID))
		return nil
	}

	if record.Status != domain.PaymentStatusPending {
		uc.logger.Debug("webhook for already settled record",
			zap.String("order_id", record.OrderID),
			zap.String("status", string(record.Status)))
		return nil
	}

	return uc.settle.complete(ctx, record, notification.PaymentID)
}

// resolveRecord looks the record up by order id, then payment-link id, then
// payment id; the first identifier that resolves wins. A nil record with a
// nil error means the event is unmatched but acknowledgeable.
func (uc *WebhookUsecase) resolveRecord(ctx context.Context, n *razorpay.Notification) (*domain.PaymentRecord, error) {
	type lookup struct {
		id   string
		find func(context.Context, string) (*domain.PaymentRecord, error)
	}

	lookups := []lookup{
		{n.OrderID, uc.records.GetByOrderID},
		{n.PaymentLinkID, uc.records.GetByPaymentLinkID},
		{n.PaymentID, uc.records.GetByPaymentID},
	}

	for _, l := range lookups {
		if l.id == "" {
			continue
		}
		record, err := l.find(ctx, l.id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return record, nil
	}
	return nil, nil
}
