// Package webhook authenticates payment provider callbacks.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gamewallet/wallet/pkg/domain"
)

// DefaultHeader is the request header carrying the hex-encoded signature.
const DefaultHeader = "X-Signature"

// Sign returns the hex-encoded HMAC-SHA256 of body keyed with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body) //nolint:errcheck
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks that signature is the HMAC-SHA256 of the exact raw body under secret.
// A missing secret, a missing signature and a malformed signature all fail closed.
func Verify(body []byte, signature, secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: no signing secret configured", domain.ErrAuthentication)
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing signature", domain.ErrAuthentication)
	}
	provided, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return fmt.Errorf("%w: malformed signature", domain.ErrAuthentication)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body) //nolint:errcheck
	if !hmac.Equal(mac.Sum(nil), provided) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrAuthentication)
	}
	return nil
}

// Valid is the boolean form of Verify.
func Valid(body []byte, signature, secret string) bool {
	return Verify(body, signature, secret) == nil
}
