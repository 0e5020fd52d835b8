package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"strings"

	"piquante/config"
	"piquante/internal/domain/service"

	"github.com/pkg/errors"
)

// hmacPseudonymizer derives email digests with HMAC-SHA512 keyed by a process secret.
type hmacPseudonymizer struct {
	key []byte
}

// NewHMACPseudonymizer builds the email pseudonymizer from the configured email secret.
func NewHMACPseudonymizer(cfg *config.Config) (service.EmailPseudonymizer, error) {
	if cfg.SecretKey.Email == "" {
		return nil, errors.New("email secret must be provided")
	}

	return &hmacPseudonymizer{key: []byte(cfg.SecretKey.Email)}, nil
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Digest returns the standard base64 encoding of HMAC-SHA512 over the normalized address.
func (p *hmacPseudonymizer) Digest(email string) string {
	mac := hmac.New(sha512.New, p.key)
	mac.Write([]byte(NormalizeEmail(email)))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
