package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("test-secret")

func TestJWTVerifier_Valid(t *testing.T) {
	tok, err := Mint(secret, "idp", "u1", time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	id, err := (&JWTVerifier{Secret: secret, Issuer: "idp"}).Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Subject != "u1" || id.ExpiresAt.IsZero() {
		t.Fatalf("identity = %+v", id)
	}
}

func TestJWTVerifier_ExpiredIsDistinct(t *testing.T) {
	tok, err := Mint(secret, "", "u1", time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	v := &JWTVerifier{Secret: secret, Now: func() time.Time { return time.Now().Add(2 * time.Minute) }}
	if _, err := v.Verify(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	good, _ := Mint(secret, "idp", "u1", time.Hour)
	wrongSecret, _ := Mint([]byte("other"), "idp", "u1", time.Hour)
	noSub, _ := Mint(secret, "idp", "", time.Hour)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "iss": "idp"}).SignedString(secret)

	cases := map[string]struct {
		v   *JWTVerifier
		tok string
		err error
	}{
		"empty":        {&JWTVerifier{Secret: secret}, "  ", ErrMissingToken},
		"garbage":      {&JWTVerifier{Secret: secret}, "abc", ErrInvalidToken},
		"wrong secret": {&JWTVerifier{Secret: secret}, wrongSecret, ErrInvalidToken},
		"wrong issuer": {&JWTVerifier{Secret: secret, Issuer: "other"}, good, ErrInvalidToken},
		"no subject":   {&JWTVerifier{Secret: secret}, noSub, ErrInvalidToken},
		"no exp":       {&JWTVerifier{Secret: secret}, noExp, ErrInvalidToken},
		"no secret":    {&JWTVerifier{}, good, ErrInvalidToken},
	}
	for name, tc := range cases {
		if _, err := tc.v.Verify(tc.tok); !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", name, tc.err, err)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":     "abc",
		"bearer   abc  ": "abc",
		"BEARER x.y.z":   "x.y.z",
		"Basic abc":      "",
		"Bearer":         "",
		"":               "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q) = %q; want %q", in, got, want)
		}
	}
}
