package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "groupbuy",
		ExpirationHours: 168,
	}
	now := time.Now().UTC()
	retailerID := uuid.New()

	payload := AccessTokenPayload{
		Phone:      "+919876543210",
		RetailerID: &retailerID,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Phone != "+919876543210" {
		t.Fatalf("expected phone preserved, got %s", claims.Phone)
	}
	if claims.RetailerID == nil || *claims.RetailerID != retailerID {
		t.Fatal("retailer id not preserved")
	}
	if claims.IsAdmin {
		t.Fatal("retailer token must not carry admin flag")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(cfg.Expiration())
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp.UTC(), claims.ExpiresAt.UTC())
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "groupbuy",
		ExpirationHours: 1,
	}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := config.JWTConfig{Secret: "different", Issuer: "groupbuy", ExpirationHours: 1}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:          "secret",
		Issuer:          "groupbuy",
		ExpirationHours: 1,
	}
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestMintAccessTokenRequiresPhone(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "groupbuy", ExpirationHours: 1}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing phone to fail")
	}
}
