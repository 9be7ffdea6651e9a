package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const EsewaStatusComplete = "COMPLETE"

// EsewaCallback is the base64 JSON document eSewa appends to the success URL.
type EsewaCallback struct {
	TransactionCode string `json:"transaction_code"`
	Status          string `json:"status"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
	ProductCode     string `json:"product_code"`
	SignedFieldName string `json:"signed_field_names"`
	Signature       string `json:"signature"`
}

// Amount returns total_amount without thousands separators.
func (c *EsewaCallback) Amount() string {
	return strings.ReplaceAll(c.TotalAmount, ",", "")
}

// EsewaStatus is the reply of the transaction status endpoint.
type EsewaStatus struct {
	ProductCode     string  `json:"product_code"`
	TransactionUUID string  `json:"transaction_uuid"`
	TotalAmount     float64 `json:"total_amount"`
	Status          string  `json:"status"`
	RefID           string  `json:"ref_id"`
}

type EsewaClient struct {
	merchantID string
	secretKey  string
	baseURL    string
	http       *http.Client
}

func NewEsewaClient(merchantID, secretKey, baseURL string, timeout time.Duration) *EsewaClient {
	return &EsewaClient{
		merchantID: merchantID,
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       newHTTPClient(timeout),
	}
}

func (c *EsewaClient) ProductCode() string {
	return c.merchantID
}

// Sign produces the HMAC-SHA256 form signature over total_amount, transaction_uuid and product_code.
func (c *EsewaClient) Sign(totalAmount int64, transactionUUID string) string {
	message := fmt.Sprintf("total_amount=%d,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, c.merchantID)
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// DecodeCallback parses the success redirect payload and checks its required fields.
func (c *EsewaClient) DecodeCallback(data string) (*EsewaCallback, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}
	var cb EsewaCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}
	if cb.TransactionCode == "" || cb.TotalAmount == "" || cb.TransactionUUID == "" || cb.ProductCode == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrInvalidCallback)
	}
	if cb.Status != EsewaStatusComplete {
		return nil, fmt.Errorf("%w: status %q", ErrNotCompleted, cb.Status)
	}
	return &cb, nil
}

// CheckStatus asks eSewa for the authoritative state of a transaction.
func (c *EsewaClient) CheckStatus(ctx context.Context, totalAmount, transactionUUID string) (*EsewaStatus, error) {
	q := url.Values{}
	q.Set("product_code", c.merchantID)
	q.Set("total_amount", totalAmount)
	q.Set("transaction_uuid", transactionUUID)
	endpoint := c.baseURL + "/api/epay/transaction/status/?" + q.Encode()

	var status EsewaStatus
	if err := doJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &status); err != nil {
		return nil, err
	}
	if status.Status != EsewaStatusComplete {
		return &status, fmt.Errorf("%w: status %q", ErrNotCompleted, status.Status)
	}
	return &status, nil
}
