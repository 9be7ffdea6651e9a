// Package payment talks to the eSewa and Khalti payment gateways.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sajilo_backend/internal/logger"
)

var (
	// ErrInvalidCallback means the data the client relayed from the gateway is malformed.
	ErrInvalidCallback = errors.New("invalid gateway callback data")
	// ErrNotCompleted means the gateway does not report the transaction as completed.
	ErrNotCompleted = errors.New("transaction not completed")
	// ErrGatewayRejected means the gateway answered with a non-2xx status.
	ErrGatewayRejected = errors.New("gateway rejected request")
)

// Esewa is the part of the eSewa ePay v2 API the backend uses.
type Esewa interface {
	ProductCode() string
	Sign(totalAmount int64, transactionUUID string) string
	DecodeCallback(data string) (*EsewaCallback, error)
	CheckStatus(ctx context.Context, totalAmount, transactionUUID string) (*EsewaStatus, error)
}

// Khalti is the part of the Khalti ePayment v2 API the backend uses.
type Khalti interface {
	Initiate(ctx context.Context, req KhaltiInitiateRequest) (*KhaltiInitiateResponse, error)
	Lookup(ctx context.Context, pidx string) (*KhaltiLookupResponse, error)
}

const defaultTimeout = 15 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends an optional JSON body and decodes a JSON reply into out.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logger.CtxWithError(ctx, "gateway request failed", err, "method", method, "url", url)
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	logger.CtxDebug(ctx, "gateway response", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, resp.StatusCode, truncate(raw, 256))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
