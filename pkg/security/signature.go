// pkg/security/signature.go
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignBody computes the hex-encoded HMAC-SHA256 signature of a webhook body.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature against the raw request body
// using a constant-time comparison.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	expected := SignBody(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
