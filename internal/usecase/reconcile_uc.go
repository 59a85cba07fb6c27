// internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"math"
	"time"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/gateway"
	"parking-gate-service/internal/mailbox"
	"parking-gate-service/internal/repository"

	"go.uber.org/zap"
)

// recentPaymentsFetchCount bounds the account-wide listing used by the
// heuristic fallback strategy.
const recentPaymentsFetchCount = 100

// strategy is one independently fallible way of observing whether an order
// has been paid. observe returns the gateway payment id (may be empty when
// the gateway only exposes an order-level flag) and whether payment was
// observed. Gateway errors are logged inside the strategy and degrade to
// "no answer", never propagate.
type strategy interface {
	name() string
	observe(ctx context.Context, record *domain.PaymentRecord) (string, bool)
}

// ReconcileUsecase discovers external settlement truth for a pending record
// by running strategies in decreasing order of reliability, stopping at the
// first positive observation. It never blocks waiting for settlement: when
// no strategy answers, the record stays pending and the caller polls again.
type ReconcileUsecase struct {
	records    repository.PaymentRecordRepository
	settle     *settlement
	strategies []strategy
	logger     *zap.Logger
}

func NewReconcileUsecase(
	records repository.PaymentRecordRepository,
	ledger repository.GuestLedgerRepository,
	gw gateway.Client,
	gate *mailbox.Mailbox,
	heuristicLookback time.Duration,
	logger *zap.Logger,
) *ReconcileUsecase {
	return &ReconcileUsecase{
		records: records,
		settle: &settlement{
			records: records,
			ledger:  ledger,
			gate:    gate,
			logger:  logger,
		},
		strategies: []strategy{
			&orderPaymentsStrategy{gateway: gw, logger: logger},
			&orderStatusStrategy{gateway: gw, logger: logger},
			&paymentLinkStrategy{gateway: gw, logger: logger},
			&recentPaymentsStrategy{gateway: gw, lookback: heuristicLookback, logger: logger},
		},
		logger: logger,
	}
}

// Verify re-checks one order against the gateway. Pending records run the
// strategy chain; completed and failed records are returned as-is, so the
// operation is safe to invoke repeatedly from any number of callers.
func (uc *ReconcileUsecase) Verify(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	record, err := uc.records.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if record.Status != domain.PaymentStatusPending {
		return record, nil
	}

	for _, st := range uc.strategies {
		paymentID, paid := st.observe(ctx, record)
		if !paid {
			continue
		}

		uc.logger.Info("payment observed",
			zap.String("order_id", record.OrderID),
			zap.String("strategy", st.name()),
			zap.String("payment_id", paymentID))

		if err := uc.settle.complete(ctx, record, paymentID); err != nil {
			return nil, err
		}
		return record, nil
	}

	return record, nil
}

// ============================================
// STRATEGIES
// ============================================

// orderPaymentsStrategy checks the payments attached to the order and takes
// the most recent one as authoritative.
type orderPaymentsStrategy struct {
	gateway gateway.Client
	logger  *zap.Logger
}

func (s *orderPaymentsStrategy) name() string { return "order_payments" }

func (s *orderPaymentsStrategy) observe(ctx context.Context, record *domain.PaymentRecord) (string, bool) {
	payments, err := s.gateway.FetchOrderPayments(ctx, record.OrderID)
	if err != nil {
		s.logger.Warn("order payments lookup failed",
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return "", false
	}
	if len(payments) == 0 {
		return "", false
	}

	latest := payments[0]
	for _, p := range payments[1:] {
		if p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}

	if gateway.IsSettled(latest.Status) {
		return latest.ID, true
	}
	return "", false
}

// orderStatusStrategy checks the order-level paid flag. Some gateways settle
// the payment list asynchronously, so the flag can flip before a payment
// entity is attached.
type orderStatusStrategy struct {
	gateway gateway.Client
	logger  *zap.Logger
}

func (s *orderStatusStrategy) name() string { return "order_status" }

func (s *orderStatusStrategy) observe(ctx context.Context, record *domain.PaymentRecord) (string, bool) {
	order, err := s.gateway.FetchOrder(ctx, record.OrderID)
	if err != nil {
		s.logger.Warn("order lookup failed",
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return "", false
	}

	if order.Status == gateway.OrderStatusPaid {
		return "", true
	}
	return "", false
}

// paymentLinkStrategy checks the hosted payment link, when the record has
// one, for a settled payment.
type paymentLinkStrategy struct {
	gateway gateway.Client
	logger  *zap.Logger
}

func (s *paymentLinkStrategy) name() string { return "payment_link" }

func (s *paymentLinkStrategy) observe(ctx context.Context, record *domain.PaymentRecord) (string, bool) {
	if record.PaymentLinkID == nil || *record.PaymentLinkID == "" {
		return "", false
	}

	link, err := s.gateway.FetchPaymentLink(ctx, *record.PaymentLinkID)
	if err != nil {
		s.logger.Warn("payment link lookup failed",
			zap.String("order_id", record.OrderID),
			zap.String("payment_link_id", *record.PaymentLinkID),
			zap.Error(err))
		return "", false
	}

	if link.Status != gateway.LinkStatusPaid {
		return "", false
	}

	for _, p := range link.Payments {
		if gateway.IsSettled(p.Status) {
			return p.ID, true
		}
	}
	// The link says paid even though no settled payment is listed yet.
	return "", true
}

// recentPaymentsStrategy is the degraded last resort: list recent payments
// account-wide and match by amount and creation time. Only the lower time
// bound (record creation minus lookback) is enforced; a later unrelated
// payment of the same amount can match.
type recentPaymentsStrategy struct {
	gateway  gateway.Client
	lookback time.Duration
	logger   *zap.Logger
}

func (s *recentPaymentsStrategy) name() string { return "recent_payments" }

func (s *recentPaymentsStrategy) observe(ctx context.Context, record *domain.PaymentRecord) (string, bool) {
	payments, err := s.gateway.ListRecentPayments(ctx, recentPaymentsFetchCount)
	if err != nil {
		s.logger.Warn("recent payments listing failed",
			zap.String("order_id", record.OrderID),
			zap.Error(err))
		return "", false
	}

	amountPaise := int64(math.Round(record.Amount * 100))
	earliest := record.CreatedAt.Add(-s.lookback)

	for _, p := range payments {
		if !gateway.IsSettled(p.Status) {
			continue
		}
		if p.Amount != amountPaise {
			continue
		}
		if p.CreatedAt.Before(earliest) {
			continue
		}

		s.logger.Warn("order matched by heuristic payment search",
			zap.String("order_id", record.OrderID),
			zap.String("payment_id", p.ID),
			zap.Int64("amount_paise", p.Amount))
		return p.ID, true
	}
	return "", false
}
