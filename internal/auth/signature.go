// Package auth verifies the signed init payload issued by the host application
// and extracts the identity it asserts.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrMalformedPayload    = errors.New("malformed_payload")
	ErrPayloadExpired      = errors.New("payload_expired")
	ErrServerMisconfigured = errors.New("server_misconfigured")
)

const (
	fieldHash     = "hash"
	fieldUser     = "user"
	fieldAuthDate = "auth_date"

	// secretKeyConstant keys the derivation of the per-bot secret from the bot token.
	secretKeyConstant = "WebAppData"

	maxClockSkew = time.Minute
)

// ExternalIdentity is the user asserted by a verified payload. It lives for one request.
type ExternalIdentity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	AuthDate  time.Time
}

func (e *ExternalIdentity) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
	if name == "" {
		return e.Username
	}
	return name
}

type payloadUser struct {
	ID        *int64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Verifier struct {
	secret string
	maxAge time.Duration
	now    func() time.Time
}

// NewVerifier returns a verifier for payloads signed with secret. maxAge <= 0 disables the age check.
func NewVerifier(secret string, maxAge time.Duration) *Verifier {
	return &Verifier{secret: secret, maxAge: maxAge, now: time.Now}
}

// Verify parses a URL-encoded payload and verifies it.
func (v *Verifier) Verify(raw string) (*ExternalIdentity, error) {
	if v.secret == "" {
		return nil, ErrServerMisconfigured
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidSignature
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return v.VerifyValues(values)
}

func (v *Verifier) VerifyValues(values url.Values) (*ExternalIdentity, error) {
	if v.secret == "" {
		return nil, ErrServerMisconfigured
	}
	// Only the first value of a key is signed, so repeats would ride along unsigned.
	for k, vs := range values {
		if len(vs) > 1 {
			return nil, fmt.Errorf("%w: repeated field %q", ErrMalformedPayload, k)
		}
	}
	provided := values.Get(fieldHash)
	if provided == "" {
		return nil, ErrInvalidSignature
	}
	got, err := hex.DecodeString(provided)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if !hmac.Equal(got, Signature(values, v.secret)) {
		return nil, ErrInvalidSignature
	}

	ident, err := parseIdentity(values)
	if err != nil {
		return nil, err
	}
	now := v.now()
	if v.maxAge > 0 && now.Sub(ident.AuthDate) > v.maxAge {
		return nil, ErrPayloadExpired
	}
	if ident.AuthDate.Sub(now) > maxClockSkew {
		return nil, ErrPayloadExpired
	}
	return ident, nil
}

func parseIdentity(values url.Values) (*ExternalIdentity, error) {
	rawUser := values.Get(fieldUser)
	if rawUser == "" {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedPayload)
	}
	var u payloadUser
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return nil, fmt.Errorf("%w: user: %v", ErrMalformedPayload, err)
	}
	if u.ID == nil || *u.ID <= 0 {
		return nil, fmt.Errorf("%w: user id", ErrMalformedPayload)
	}
	ident := &ExternalIdentity{
		ID:        *u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	sec, err := strconv.ParseInt(values.Get(fieldAuthDate), 10, 64)
	if err != nil || sec <= 0 {
		return nil, fmt.Errorf("%w: auth_date", ErrMalformedPayload)
	}
	ident.AuthDate = time.Unix(sec, 0)
	return ident, nil
}

// DataCheckString is the canonical form that gets signed: every field except
// the hash, sorted by key, rendered as key=value and joined by newlines.
func DataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == fieldHash {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(values.Get(k))
	}
	return b.String()
}

// Signature computes the raw HMAC of values under the secret derived from botToken.
func Signature(values url.Values, botToken string) []byte {
	derive := hmac.New(sha256.New, []byte(secretKeyConstant))
	derive.Write([]byte(botToken))
	mac := hmac.New(sha256.New, derive.Sum(nil))
	mac.Write([]byte(DataCheckString(values)))
	return mac.Sum(nil)
}

// Sign returns a copy of values with a valid hash set. Used by tests and the dev tooling.
func Sign(values url.Values, botToken string) url.Values {
	out := url.Values{}
	for k, v := range values {
		if k == fieldHash {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	out.Set(fieldHash, hex.EncodeToString(Signature(out, botToken)))
	return out
}
