// internal/handler/payment_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentUC   *usecase.PaymentUsecase
	reconcileUC *usecase.ReconcileUsecase
	logger      *zap.Logger
}

func NewPaymentHandler(paymentUC *usecase.PaymentUsecase, reconcileUC *usecase.ReconcileUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentUC:   paymentUC,
		reconcileUC: reconcileUC,
		logger:      logger,
	}
}

type createPaymentRequest struct {
	Plate  string  `json:"plate"`
	Amount float64 `json:"amount"`
}

// HandleCreatePayment creates a gateway order and payment link for a plate.
func (h *PaymentHandler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.paymentUC.CreatePayment(ctx, req.Plate, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPlate):
			sendError(w, http.StatusBadRequest, "a valid plate is required", err)
		case errors.Is(err, domain.ErrGatewayUnavailable):
			sendError(w, http.StatusBadGateway, "payment gateway unavailable", err)
		case errors.Is(err, domain.ErrAlreadyExists):
			sendError(w, http.StatusConflict, "a payment for this order already exists", err)
		default:
			h.logger.Error("failed to create payment",
				zap.String("plate", req.Plate),
				zap.Error(err))
			sendError(w, http.StatusInternalServerError, "failed to create payment", err)
		}
		return
	}

	sendSuccess(w, http.StatusCreated, "payment created", result)
}

// HandleStatus returns the record's last known status, re-checking the
// gateway first when the record is still pending. The browser poll drives
// this endpoint every few seconds until completion.
func (h *PaymentHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.verifyAndRespond(w, r, chi.URLParam(r, "order_id"))
}

// HandleVerify synchronously re-runs reconciliation for an order.
func (h *PaymentHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.verifyAndRespond(w, r, chi.URLParam(r, "order_id"))
}

func (h *PaymentHandler) verifyAndRespond(w http.ResponseWriter, r *http.Request, orderID string) {
	ctx := r.Context()

	record, err := h.reconcileUC.Verify(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			sendError(w, http.StatusNotFound, "no payment found for this order", err)
			return
		}
		h.logger.Error("failed to verify payment",
			zap.String("order_id", orderID),
			zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to verify payment", err)
		return
	}

	sendSuccess(w, http.StatusOK, statusMessage(record.Status), map[string]interface{}{
		"status": record.Status,
		"record": record,
	})
}

// HandleByPlate reports whether a plate has a completed payment.
func (h *PaymentHandler) HandleByPlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")

	record, err := h.paymentUC.GetLatestCompleted(ctx, plate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			sendSuccess(w, http.StatusOK, "no completed payment for this plate", map[string]interface{}{
				"paid": false,
			})
		case errors.Is(err, domain.ErrInvalidPlate):
			sendError(w, http.StatusBadRequest, "a valid plate is required", err)
		default:
			h.logger.Error("failed to look up plate",
				zap.String("plate", plate),
				zap.Error(err))
			sendError(w, http.StatusInternalServerError, "failed to look up plate", err)
		}
		return
	}

	sendSuccess(w, http.StatusOK, "completed payment found", map[string]interface{}{
		"paid":   true,
		"record": record,
	})
}

// HandleGuestHistory lists the guest ledger entries for a plate.
func (h *PaymentHandler) HandleGuestHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")

	entries, err := h.paymentUC.GuestHistory(ctx, plate)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPlate) {
			sendError(w, http.StatusBadRequest, "a valid plate is required", err)
			return
		}
		h.logger.Error("failed to list guest history",
			zap.String("plate", plate),
			zap.Error(err))
		sendError(w, http.StatusInternalServerError, "failed to list guest history", err)
		return
	}

	sendSuccess(w, http.StatusOK, "guest history", map[string]interface{}{
		"plate":   domain.NormalizePlate(plate),
		"count":   len(entries),
		"entries": entries,
	})
}

func statusMessage(status domain.PaymentStatus) string {
	switch status {
	case domain.PaymentStatusCompleted:
		return "payment completed"
	case domain.PaymentStatusFailed:
		return "payment failed"
	default:
		return "awaiting payment confirmation"
	}
}
