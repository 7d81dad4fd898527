package jwt

import (
	"testing"
	"time"

	"repairdesk/config"

	"github.com/google/uuid"
)

func newTestService(access, refresh time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  access,
		RefreshExpiry: refresh,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "tech@example.com", 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.Email != "tech@example.com" || claims.RoleID != 3 {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("token type = %s, want %s", claims.TokenType, AccessToken)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token id = %s, want %s", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	svc := newTestService(time.Minute, time.Hour)

	token, _, err := svc.GenerateRefreshToken(uuid.New(), "c@example.com", 4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("token type = %s, want %s", claims.TokenType, RefreshToken)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := newTestService(time.Minute, time.Hour).GenerateAccessToken(uuid.New(), "a@example.com", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTService(config.JWTConfig{Secret: "other", AccessExpiry: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestService(-time.Minute, time.Hour)

	token, _, err := svc.GenerateAccessToken(uuid.New(), "a@example.com", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expiry error")
	}
}
