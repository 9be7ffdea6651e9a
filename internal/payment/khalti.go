package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const KhaltiStatusCompleted = "Completed"

type KhaltiCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// KhaltiInitiateRequest amounts are in paisa.
type KhaltiInitiateRequest struct {
	ReturnURL         string         `json:"return_url"`
	WebsiteURL        string         `json:"website_url"`
	Amount            int64          `json:"amount"`
	PurchaseOrderID   string         `json:"purchase_order_id"`
	PurchaseOrderName string         `json:"purchase_order_name"`
	CustomerInfo      KhaltiCustomer `json:"customer_info"`
}

type KhaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

type KhaltiLookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

// KhaltiCallback holds the query parameters Khalti appends to return_url.
type KhaltiCallback struct {
	Pidx            string `json:"pidx"`
	TransactionID   string `json:"transaction_id"`
	Status          string `json:"status"`
	PurchaseOrderID string `json:"purchase_order_id"`
}

// Validate checks the callback reports a completed payment.
func (c *KhaltiCallback) Validate() error {
	if c.Pidx == "" || c.TransactionID == "" || c.PurchaseOrderID == "" {
		return fmt.Errorf("%w: missing fields", ErrInvalidCallback)
	}
	if c.Status != KhaltiStatusCompleted {
		return fmt.Errorf("%w: status %q", ErrNotCompleted, c.Status)
	}
	return nil
}

type KhaltiClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewKhaltiClient(secretKey, baseURL string, timeout time.Duration) *KhaltiClient {
	return &KhaltiClient{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      newHTTPClient(timeout),
	}
}

func (c *KhaltiClient) headers() map[string]string {
	return map[string]string{"Authorization": "key " + c.secretKey}
}

func (c *KhaltiClient) Initiate(ctx context.Context, req KhaltiInitiateRequest) (*KhaltiInitiateResponse, error) {
	var resp KhaltiInitiateResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/v2/epayment/initiate/", c.headers(), req, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentURL == "" {
		return nil, fmt.Errorf("%w: no payment_url in response", ErrGatewayRejected)
	}
	return &resp, nil
}

func (c *KhaltiClient) Lookup(ctx context.Context, pidx string) (*KhaltiLookupResponse, error) {
	var resp KhaltiLookupResponse
	body := map[string]string{"pidx": pidx}
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/v2/epayment/lookup/", c.headers(), body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != KhaltiStatusCompleted {
		return &resp, fmt.Errorf("%w: status %q", ErrNotCompleted, resp.Status)
	}
	return &resp, nil
}
