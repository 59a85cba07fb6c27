// internal/gateway/razorpay/razorpay.go
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"parking-gate-service/config"
	"parking-gate-service/internal/gateway"
)

type RazorpayClient struct {
	config     config.RazorpayConfig
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	return &RazorpayClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ============================================
// ORDERS
// ============================================

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*gateway.Order, error) {
	request := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		request["notes"] = notes
	}

	respData, err := c.makeRequest(ctx, "POST", c.baseURL+"/orders", request)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return orderFromResponse(&resp), nil
}

func (c *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error) {
	respData, err := c.makeRequest(ctx, "GET", fmt.Sprintf("%s/orders/%s", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return orderFromResponse(&resp), nil
}

func orderFromResponse(resp *orderResponse) *gateway.Order {
	return &gateway.Order{
		ID:       resp.ID,
		Status:   resp.Status,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
	}
}

// ============================================
// PAYMENTS
// ============================================

type paymentResponse struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type paymentCollection struct {
	Count int               `json:"count"`
	Items []paymentResponse `json:"items"`
}

func (c *RazorpayClient) FetchOrderPayments(ctx context.Context, orderID string) ([]gateway.Payment, error) {
	respData, err := c.makeRequest(ctx, "GET", fmt.Sprintf("%s/orders/%s/payments", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}

	var resp paymentCollection
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse payments response: %w", err)
	}

	return paymentsFromItems(resp.Items), nil
}

func (c *RazorpayClient) ListRecentPayments(ctx context.Context, count int) ([]gateway.Payment, error) {
	respData, err := c.makeRequest(ctx, "GET", fmt.Sprintf("%s/payments?count=%d", c.baseURL, count), nil)
	if err != nil {
		return nil, err
	}

	var resp paymentCollection
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse payments response: %w", err)
	}

	return paymentsFromItems(resp.Items), nil
}

func paymentsFromItems(items []paymentResponse) []gateway.Payment {
	payments := make([]gateway.Payment, 0, len(items))
	for _, item := range items {
		payments = append(payments, gateway.Payment{
			ID:        item.ID,
			OrderID:   item.OrderID,
			Amount:    item.Amount,
			Status:    item.Status,
			CreatedAt: time.Unix(item.CreatedAt, 0),
		})
	}
	return payments
}

// ============================================
// PAYMENT LINKS
// ============================================

type paymentLinkResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	ShortURL string `json:"short_url"`
	Payments []struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		CreatedAt int64  `json:"created_at"`
	} `json:"payments"`
}

func (c *RazorpayClient) CreatePaymentLink(ctx context.Context, amountPaise int64, description, referenceID, callbackURL string) (*gateway.PaymentLink, error) {
	request := map[string]interface{}{
		"amount":       amountPaise,
		"currency":     "INR",
		"description":  description,
		"reference_id": referenceID,
	}
	if callbackURL != "" {
		request["callback_url"] = callbackURL
		request["callback_method"] = "get"
	}

	respData, err := c.makeRequest(ctx, "POST", c.baseURL+"/payment_links", request)
	if err != nil {
		return nil, err
	}

	var resp paymentLinkResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse payment link response: %w", err)
	}

	return linkFromResponse(&resp), nil
}

func (c *RazorpayClient) FetchPaymentLink(ctx context.Context, linkID string) (*gateway.PaymentLink, error) {
	respData, err := c.makeRequest(ctx, "GET", fmt.Sprintf("%s/payment_links/%s", c.baseURL, linkID), nil)
	if err != nil {
		return nil, err
	}

	var resp paymentLinkResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse payment link response: %w", err)
	}

	return linkFromResponse(&resp), nil
}

func linkFromResponse(resp *paymentLinkResponse) *gateway.PaymentLink {
	link := &gateway.PaymentLink{
		ID:       resp.ID,
		OrderID:  resp.OrderID,
		Status:   resp.Status,
		ShortURL: resp.ShortURL,
	}
	for _, p := range resp.Payments {
		link.Payments = append(link.Payments, gateway.Payment{
			ID:        p.PaymentID,
			OrderID:   resp.OrderID,
			Amount:    p.Amount,
			Status:    p.Status,
			CreatedAt: time.Unix(p.CreatedAt, 0),
		})
	}
	return link
}

// ============================================
// HTTP
// ============================================

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// makeRequest performs an authenticated API call and returns the raw body.
func (c *RazorpayClient) makeRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.config.KeyID, c.config.KeySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(respData, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway error (%d %s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}

	return respData, nil
}
