// internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"parking-gate-service/config"
	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/gateway"
	"parking-gate-service/internal/repository"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type PaymentUsecase struct {
	records repository.PaymentRecordRepository
	ledger  repository.GuestLedgerRepository
	gateway gateway.Client
	cfg     config.PaymentConfig
	logger  *zap.Logger
}

func NewPaymentUsecase(
	records repository.PaymentRecordRepository,
	ledger repository.GuestLedgerRepository,
	gw gateway.Client,
	cfg config.PaymentConfig,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		records: records,
		ledger:  ledger,
		gateway: gw,
		cfg:     cfg,
		logger:  logger,
	}
}

type CreatePaymentResult struct {
	OrderID    string  `json:"order_id"`
	PaymentURL string  `json:"payment_url"`
	QRPayload  string  `json:"qr_payload"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// CreatePayment registers an order and a hosted payment link at the gateway
// and persists the pending record. A plate with an unsettled attempt gets
// its existing order back instead of a second one, so repeated detections of
// the same vehicle stay idempotent.
func (uc *PaymentUsecase) CreatePayment(ctx context.Context, plate string, amount float64) (*CreatePaymentResult, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.ErrInvalidPlate
	}
	if amount <= 0 {
		amount = uc.cfg.DefaultAmount
	}

	if existing, err := uc.records.GetByPlateStatus(ctx, plate, domain.PaymentStatusPending); err == nil {
		uc.logger.Info("reusing pending payment attempt for plate",
			zap.String("plate", plate),
			zap.String("order_id", existing.OrderID))
		return &CreatePaymentResult{
			OrderID:    existing.OrderID,
			PaymentURL: existing.PaymentURL,
			QRPayload:  existing.PaymentURL,
			Amount:     existing.Amount,
			Currency:   existing.Currency,
		}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	amountPaise := int64(math.Round(amount * 100))
	receipt := "gate_" + ulid.Make().String()

	order, err := uc.gateway.CreateOrder(ctx, amountPaise, uc.cfg.Currency, receipt, map[string]string{
		"plate": plate,
	})
	if err != nil {
		uc.logger.Error("failed to create gateway order",
			zap.String("plate", plate),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	var callbackURL string
	if uc.cfg.CallbackBaseURL != "" {
		callbackURL = fmt.Sprintf("%s/api/payments/status/%s", uc.cfg.CallbackBaseURL, order.ID)
	}

	link, err := uc.gateway.CreatePaymentLink(ctx, amountPaise,
		fmt.Sprintf("Parking fee for %s", plate), order.ID, callbackURL)
	if err != nil {
		uc.logger.Error("failed to create payment link",
			zap.String("plate", plate),
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	record := &domain.PaymentRecord{
		OrderID:       order.ID,
		Plate:         plate,
		Amount:        amount,
		Currency:      uc.cfg.Currency,
		Status:        domain.PaymentStatusPending,
		PaymentLinkID: &link.ID,
		PaymentURL:    link.ShortURL,
	}

	if err := uc.records.Create(ctx, record); err != nil {
		uc.logger.Error("failed to persist payment record",
			zap.String("plate", plate),
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, err
	}

	uc.logger.Info("payment attempt created",
		zap.String("plate", plate),
		zap.String("order_id", order.ID),
		zap.String("payment_link_id", link.ID),
		zap.Float64("amount", amount))

	return &CreatePaymentResult{
		OrderID:    order.ID,
		PaymentURL: link.ShortURL,
		QRPayload:  link.ShortURL,
		Amount:     amount,
		Currency:   uc.cfg.Currency,
	}, nil
}

// GetLatestCompleted returns the most recent completed payment for a plate.
func (uc *PaymentUsecase) GetLatestCompleted(ctx context.Context, plate string) (*domain.PaymentRecord, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.ErrInvalidPlate
	}
	return uc.records.GetLatestCompletedByPlate(ctx, plate)
}

// GuestHistory returns the guest ledger entries recorded for a plate.
func (uc *PaymentUsecase) GuestHistory(ctx context.Context, plate string) ([]domain.GuestLedgerEntry, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.ErrInvalidPlate
	}
	return uc.ledger.ListByPlate(ctx, plate)
}
