package pagbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents a PagBank API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new PagBank client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreateOrder creates an order with its charges (card/boleto) or PIX QR codes
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	if c.config.NotificationURL != "" && len(req.NotificationURLs) == 0 {
		req.NotificationURLs = []string{c.config.NotificationURL}
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "orders", req)
	if err != nil {
		return nil, fmt.Errorf("failed to make create order request: %w", err)
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(resp, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w", err)
	}

	return &orderResp, nil
}

// PayOrder runs the payment step again on an existing PSP order. Used for
// retrying a pending payment without recreating the order.
func (c *Client) PayOrder(ctx context.Context, orderID string, req PayRequest) (*OrderResponse, error) {
	endpoint := fmt.Sprintf("orders/%s/pay", orderID)
	resp, err := c.doRequest(ctx, http.MethodPost, endpoint, req)
	if err != nil {
		return nil, fmt.Errorf("failed to make pay order request: %w", err)
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(resp, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pay response: %w", err)
	}

	return &orderResp, nil
}

// GetOrder fetches an order with current charge statuses
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	endpoint := fmt.Sprintf("orders/%s", orderID)
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make get order request: %w", err)
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(resp, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w", err)
	}

	return &orderResp, nil
}

// PublicKey fetches the RSA public key used for card encryption
func (c *Client) PublicKey(ctx context.Context) (*PublicKeyResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "public-keys/card", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make public key request: %w", err)
	}

	var keyResp PublicKeyResponse
	if err := json.Unmarshal(resp, &keyResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key response: %w", err)
	}

	return &keyResp, nil
}

// doRequest performs an HTTP request to the PagBank API
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || len(errResp.ErrorMessages) == 0 {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Error())
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, &ValidationErrors{Fields: errResp.FieldErrors()}
		default:
			return nil, fmt.Errorf("%w: %s", ErrChargeDeclined, errResp.Error())
		}
	}

	return respBody, nil
}
