package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"errsite/internal/models"
)

const issuer = "errsite"

// DefaultTokenTTL is how long a session token stays valid after issuance.
// There is no refresh or rotation; the operator logs in again.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenPayload is what a session token binds: the user and the role they
// held at login. The role is re-checked against the database when the
// session is resolved.
type TokenPayload struct {
	UserID uuid.UUID
	Role   models.Role
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens with a process-wide HMAC key.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token signer. The secret must be non-empty; a
// misconfigured signing key is a fatal startup error, not a runtime one.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("session secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime. Used to align the session
// cookie's Max-Age with the token's embedded expiry.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token embedding the payload with the configured TTL.
func (t *Tokens) Issue(p TokenPayload) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the embedded
// payload. Every failure mode (malformed, tampered, expired, wrong
// signing method) is the same non-exceptional (nil, false).
func (t *Tokens) Verify(token string) (*TokenPayload, bool) {
	if token == "" {
		return nil, false
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, false
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return nil, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, false
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, false
	}
	return &TokenPayload{UserID: userID, Role: role}, true
}
