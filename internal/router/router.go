// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"parking-gate-service/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func SetupRoutes(
	paymentHandler *handler.PaymentHandler,
	webhookHandler *handler.WebhookHandler,
	gateHandler *handler.GateHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS (the payment page is served from a different origin)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Razorpay-Signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/payments/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// ============================================
	// PAYMENTS (browser + detection agent)
	// ============================================
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/create", paymentHandler.HandleCreatePayment)
		r.Get("/status/{order_id}", paymentHandler.HandleStatus)
		r.Post("/verify/{order_id}", paymentHandler.HandleVerify)
		r.Get("/plate/{plate}", paymentHandler.HandleByPlate)
		r.Get("/guests/{plate}", paymentHandler.HandleGuestHistory)

		// Gateway notifications
		r.Post("/webhook", webhookHandler.HandleGatewayWebhook)
	})

	// ============================================
	// GATE (hardware poller)
	// ============================================
	r.Route("/api/numbers", func(r chi.Router) {
		r.Get("/trigger-gate", gateHandler.HandlePollGate)
		r.Post("/trigger-gate", gateHandler.HandleTriggerGate)
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}
