// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Razorpay RazorpayConfig
	Payment  PaymentConfig
	Gate     GateConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

type PaymentConfig struct {
	DefaultAmount   float64
	Currency        string
	CallbackBaseURL string
}

type GateConfig struct {
	SignalTTL         time.Duration
	HeuristicLookback time.Duration
}

func Load(logger *zap.Logger) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "4000"),
			Env:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "parking_gate"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("RAZORPAY_BASE_URL", ""),
		},
		Payment: PaymentConfig{
			DefaultAmount:   getEnvFloat("PAYMENT_DEFAULT_AMOUNT", 50),
			Currency:        getEnv("PAYMENT_CURRENCY", "INR"),
			CallbackBaseURL: getEnv("CALLBACK_BASE_URL", ""),
		},
		Gate: GateConfig{
			SignalTTL:         getEnvDuration("GATE_SIGNAL_TTL", 10*time.Second),
			HeuristicLookback: getEnvDuration("RECONCILE_HEURISTIC_LOOKBACK", 60*time.Second),
		},
	}

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are not configured (RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET)")
	}

	if cfg.Razorpay.WebhookSecret == "" {
		logger.Warn("webhook secret is not configured, incoming webhooks will not be verified")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
