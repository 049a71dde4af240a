package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestVoiceServiceLoginToken(t *testing.T) {
	secret := "test-secret"
	svc := NewVoiceService(secret, "issuer", "example.com")
	now := time.Now()
	svc.now = func() time.Time { return now }

	tokenString, err := svc.LoginToken("user123")
	if err != nil {
		t.Fatalf("login token error: %v", err)
	}

	claims := parseVoiceClaims(t, tokenString, secret)
	userURI := "sip:.issuer.user123.@example.com"

	if got := stringClaim(t, claims, "vxa"); got != VoiceActionLogin {
		t.Fatalf("vxa = %s, want %s", got, VoiceActionLogin)
	}
	if got := stringClaim(t, claims, "f"); got != userURI {
		t.Fatalf("f = %s, want %s", got, userURI)
	}
	if got := stringClaim(t, claims, "t"); got != userURI {
		t.Fatalf("t = %s, want %s", got, userURI)
	}
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) != now.Add(DefaultVoiceTokenTTL).Unix() {
		t.Fatalf("exp = %v, want %d", claims["exp"], now.Add(DefaultVoiceTokenTTL).Unix())
	}
}

func TestVoiceServiceJoinToken(t *testing.T) {
	secret := "test-secret"
	svc := NewVoiceService(secret, "issuer", "example.com").WithTTL(5 * time.Minute)
	channel := VoiceChannel{MatchID: "match-456", Members: [2]string{"alice", "bob"}}

	tokenString, err := svc.JoinToken("bob", channel)
	if err != nil {
		t.Fatalf("join token error: %v", err)
	}

	claims := parseVoiceClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "vxa"); got != VoiceActionJoin {
		t.Fatalf("vxa = %s, want %s", got, VoiceActionJoin)
	}
	if got := stringClaim(t, claims, "t"); got != "sip:confctl-g-darts-match-456@example.com" {
		t.Fatalf("t = %s", got)
	}
	if got := stringClaim(t, claims, "f"); got != "sip:.issuer.bob.@example.com" {
		t.Fatalf("f = %s", got)
	}

	if _, err := svc.JoinToken("carol", channel); err == nil {
		t.Fatal("expected error for a player outside the channel")
	}
	if _, err := svc.JoinToken("alice", VoiceChannel{}); err == nil {
		t.Fatal("expected error for an empty channel")
	}
}

func TestVoiceServiceNoncesDiffer(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")
	first, _ := svc.LoginToken("user")
	second, _ := svc.LoginToken("user")

	vxi1 := stringClaim(t, parseVoiceClaims(t, first, "secret"), "vxi")
	vxi2 := stringClaim(t, parseVoiceClaims(t, second, "secret"), "vxi")
	if vxi1 == vxi2 {
		t.Fatalf("vxi reused across tokens: %s", vxi1)
	}
}

func TestVoiceServiceRejectsBadInput(t *testing.T) {
	svc := NewVoiceService("secret", "issuer", "example.com")
	if _, err := svc.LoginToken(""); err == nil {
		t.Fatal("expected error for empty user")
	}

	unconfigured := NewVoiceService("", "issuer", "example.com")
	if unconfigured.Configured() {
		t.Fatal("service without secret should not be configured")
	}
	if _, err := unconfigured.LoginToken("user"); err == nil {
		t.Fatal("expected error for missing vivox config")
	}
}

func parseVoiceClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
