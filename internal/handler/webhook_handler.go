// internal/handler/webhook_handler.go
package handler

import (
	"errors"
	"io"
	"net/http"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/usecase"

	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's HMAC-SHA256 signature over the raw
// request body.
const SignatureHeader = "X-Razorpay-Signature"

type WebhookHandler struct {
	webhookUC *usecase.WebhookUsecase
	logger    *zap.Logger
}

func NewWebhookHandler(webhookUC *usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: webhookUC,
		logger:    logger,
	}
}

// HandleGatewayWebhook receives signed notifications from the payment
// gateway. Ignored and unmatched events are acknowledged with 200 so the
// gateway stops redelivering them.
func (h *WebhookHandler) HandleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.Info("received gateway webhook",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		sendError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	if err := h.webhookUC.Process(ctx, body, r.Header.Get(SignatureHeader)); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			sendError(w, http.StatusUnauthorized, "webhook signature verification failed", err)
		case errors.Is(err, domain.ErrMalformedPayload):
			sendError(w, http.StatusBadRequest, "webhook payload could not be parsed", err)
		default:
			h.logger.Error("failed to process webhook", zap.Error(err))
			sendError(w, http.StatusInternalServerError, "failed to process webhook", err)
		}
		return
	}

	sendSuccess(w, http.StatusOK, "webhook processed", map[string]interface{}{
		"received": true,
	})
}
