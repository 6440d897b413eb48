package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
)

// SignatureLen is the length of an encoded signature (hex SHA-256).
const SignatureLen = sha256.Size * 2

const redacted = "[REDACTED]"

// Secret is the process-wide signing key. It is built once at startup and
// never mutated; every printing path is redacted.
type Secret struct {
	key []byte
}

// NewSecret copies s into an immutable Secret. An empty s yields an unset Secret.
func NewSecret(s string) Secret {
	if s == "" {
		return Secret{}
	}
	return Secret{key: []byte(s)}
}

// IsSet reports whether a key is configured.
func (s Secret) IsSet() bool { return len(s.key) > 0 }

// String implements fmt.Stringer.
func (s Secret) String() string { return redacted }

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string { return redacted }

// MarshalJSON keeps the key out of serialized config dumps.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }

// Signer signs and verifies credential payloads with a fixed Secret.
// It is safe for concurrent use.
type Signer struct {
	secret Secret
}

// NewSigner constructs a Signer bound to secret.
func NewSigner(secret Secret) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func (s *Signer) Sign(payload string) (string, error) {
	if !s.secret.IsSet() {
		return "", errs.ErrConfiguration
	}
	return hex.EncodeToString(s.mac(payload)), nil
}

// Check verifies signature against a fresh MAC over the presented payload
// bytes. The returned error tells operators why verification failed and must
// not be shown to the presenter.
func (s *Signer) Check(payload, signature string) error {
	if !s.secret.IsSet() {
		return errs.ErrConfiguration
	}
	if _, err := Decode(payload); err != nil {
		return err
	}
	if len(signature) != SignatureLen {
		return fmt.Errorf("%w: bad signature length", errs.ErrSignatureMismatch)
	}
	// Compared as text: only the exact lowercase encoding is accepted.
	want := hex.EncodeToString(s.mac(payload))
	if subtle.ConstantTimeCompare([]byte(want), []byte(signature)) != 1 {
		return errs.ErrSignatureMismatch
	}
	return nil
}

// Verify reports whether signature is valid for payload.
func (s *Signer) Verify(payload, signature string) bool {
	return s.Check(payload, signature) == nil
}

func (s *Signer) mac(payload string) []byte {
	m := hmac.New(sha256.New, s.secret.key)
	m.Write([]byte(payload))
	return m.Sum(nil)
}

// Issue builds the payload for (applicantID, examSessionID) at now and signs
// it. The pair is returned exactly as it must be stored and printed.
func Issue(s *Signer, applicantID, examSessionID int64, now time.Time) (payload, signature string, err error) {
	p, err := Build(applicantID, examSessionID, now)
	if err != nil {
		return "", "", err
	}
	payload = p.Encode()
	signature, err = s.Sign(payload)
	if err != nil {
		return "", "", err
	}
	return payload, signature, nil
}
