package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"errsite/internal/models"
)

const testSecret = "test-secret-for-tokens"

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	payload := TokenPayload{UserID: uuid.New(), Role: models.RoleEditor}
	signed, err := tokens.Issue(payload)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, ok := tokens.Verify(signed)
	if !ok {
		t.Fatal("Verify rejected a freshly issued token")
	}
	if got.UserID != payload.UserID {
		t.Errorf("UserID = %s, want %s", got.UserID, payload.UserID)
	}
	if got.Role != payload.Role {
		t.Errorf("Role = %s, want %s", got.Role, payload.Role)
	}
}

// signTest signs arbitrary claims with the given secret, bypassing
// Issue so tests can produce expired or malformed tokens.
func signTest(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestVerifyRejections(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	now := time.Now().UTC()
	validSubject := uuid.New().String()

	base := func() sessionClaims {
		return sessionClaims{
			Role: string(models.RoleEditor),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   validSubject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	expired := base()
	expired.IssuedAt = jwt.NewNumericDate(now.Add(-2 * time.Hour))
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	noExpiry := base()
	noExpiry.ExpiresAt = nil

	wrongIssuer := base()
	wrongIssuer.Issuer = "someone-else"

	badSubject := base()
	badSubject.Subject = "not-a-uuid"

	badRole := base()
	badRole.Role = "INTRUDER"

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not-a-token"},
		{"expired", signTest(t, testSecret, expired)},
		{"missing expiry", signTest(t, testSecret, noExpiry)},
		{"wrong issuer", signTest(t, testSecret, wrongIssuer)},
		{"wrong secret", signTest(t, "other-secret", base())},
		{"bad subject", signTest(t, testSecret, badSubject)},
		{"unknown role", signTest(t, testSecret, badRole)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if payload, ok := tokens.Verify(tt.token); ok || payload != nil {
				t.Errorf("Verify accepted %s token", tt.name)
			}
		})
	}
}

func TestVerifyRejectsWrongSigningMethod(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(models.RoleEditor),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, ok := tokens.Verify(signed); ok {
		t.Fatal("Verify accepted an HS512 token")
	}
}
