package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"heartlink/internal/domain/ports/adapter"
)

// SignatureHeader is the header Paystack sends on every webhook delivery.
const SignatureHeader = "x-paystack-signature"

// PaystackWebhookVerifier checks the HMAC-SHA512 of the raw body against the
// shared secret, per the Paystack webhook documentation.
type PaystackWebhookVerifier struct {
	secret []byte
}

var _ adapter.WebhookVerifier = (*PaystackWebhookVerifier)(nil)

func NewPaystackWebhookVerifier(secret string) *PaystackWebhookVerifier {
	return &PaystackWebhookVerifier{secret: []byte(secret)}
}

func (v *PaystackWebhookVerifier) VerifySignature(body []byte, signature string) bool {
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	h := hmac.New(sha512.New, v.secret)
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return strings.EqualFold(expected, signature)
}
