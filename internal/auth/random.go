package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateOTP returns a uniformly random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateLinkToken returns 40 hex characters for one-time links.
func GenerateLinkToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateInvoiceNumber returns "SA-" followed by an upper-case dashless UUID.
func GenerateInvoiceNumber() string {
	return "SA-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
