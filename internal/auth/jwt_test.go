package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.GenerateSessionToken("session-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("Expected expiry in the future, got %s", expiresAt)
	}

	claims, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("Expected session-1, got %s", claims.SessionID)
	}
}

func TestValidateRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	good, _, _ := issuer.GenerateSessionToken("session-1")

	expiredIssuer := NewTokenIssuer("secret", time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredIssuer.GenerateSessionToken("session-1")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{SessionID: "session-1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]struct {
		issuer *TokenIssuer
		token  string
	}{
		"wrong secret": {NewTokenIssuer("other", time.Hour), good},
		"expired":      {issuer, expired},
		"garbage":      {issuer, "not.a.token"},
		"alg none":     {issuer, unsigned},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tc.issuer.ValidateToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
