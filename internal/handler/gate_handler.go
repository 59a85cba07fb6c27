// internal/handler/gate_handler.go
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/mailbox"

	"go.uber.org/zap"
)

type GateHandler struct {
	gate   *mailbox.Mailbox
	logger *zap.Logger
}

func NewGateHandler(gate *mailbox.Mailbox, logger *zap.Logger) *GateHandler {
	return &GateHandler{
		gate:   gate,
		logger: logger,
	}
}

type triggerGateRequest struct {
	Plate  string `json:"plate"`
	Reason string `json:"reason"`
}

// HandleTriggerGate arms the gate mailbox directly, outside the payment
// flow (whitelisted plates, manual override).
func (h *GateHandler) HandleTriggerGate(w http.ResponseWriter, r *http.Request) {
	var req triggerGateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	plate := domain.NormalizePlate(req.Plate)
	if plate == "" {
		sendError(w, http.StatusBadRequest, "a valid plate is required", domain.ErrInvalidPlate)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	h.gate.Set(plate, reason)

	h.logger.Info("gate signal armed",
		zap.String("plate", plate),
		zap.String("reason", reason))

	sendSuccess(w, http.StatusOK, "gate signal armed", map[string]interface{}{
		"plate":  plate,
		"reason": reason,
	})
}

// HandlePollGate is the hardware agent's endpoint. The servo controller
// polls it every couple of seconds and opens the gate when triggered is
// true; each armed signal is delivered at most once.
func (h *GateHandler) HandlePollGate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	sig, ok := h.gate.PollAndClear()
	if !ok {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"triggered": false,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	h.logger.Info("gate signal delivered to hardware poller",
		zap.String("plate", sig.Plate),
		zap.String("reason", sig.Reason))

	json.NewEncoder(w).Encode(map[string]interface{}{
		"triggered": true,
		"plate":     sig.Plate,
		"reason":    sig.Reason,
		"message":   fmt.Sprintf("Gate trigger active for plate: %s (%s)", sig.Plate, sig.Reason),
		"timestamp": sig.ArmedAt.Format(time.RFC3339),
	})
}
