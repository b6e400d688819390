// Copyright 2021 the DP3T WS authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwthelper

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestSignJWT(t *testing.T) {
	t.Parallel()

	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	claims := &jwt.StandardClaims{
		Issuer:    "dp3t-ws",
		Subject:   "test",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signed, err := SignJWT(token, pk)
	if err != nil {
		t.Fatal(err)
	}

	got := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(signed, got, func(token *jwt.Token) (interface{}, error) {
		if method, ok := token.Method.(*jwt.SigningMethodECDSA); !ok || method.Name != jwt.SigningMethodES256.Name {
			t.Fatalf("wrong signing method: %v", token.Method.Alg())
		}
		return pk.Public(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Valid {
		t.Fatal("token did not verify")
	}
	if got.Issuer != claims.Issuer || got.Subject != claims.Subject {
		t.Fatalf("claims round trip mismatch: got %+v, want %+v", got, claims)
	}
}

func TestSignJWT_MatchesSignedString(t *testing.T) {
	t.Parallel()

	// The helper must produce tokens interchangeable with the library's own
	// ES256 signing path.
	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, &jwt.StandardClaims{Issuer: "dp3t-ws"})

	viaHelper, err := SignJWT(token, pk)
	if err != nil {
		t.Fatal(err)
	}
	viaLibrary, err := jwt.NewWithClaims(jwt.SigningMethodES256, &jwt.StandardClaims{Issuer: "dp3t-ws"}).SignedString(pk)
	if err != nil {
		t.Fatal(err)
	}

	// ECDSA signatures are randomized, compare the signed portions and
	// verify both with the same key.
	stripSig := func(s string) string {
		i := strings.LastIndex(s, ".")
		return s[:i]
	}
	if got, want := stripSig(viaHelper), stripSig(viaLibrary); got != want {
		t.Fatalf("signing strings differ: got %q, want %q", got, want)
	}

	for _, s := range []string{viaHelper, viaLibrary} {
		if _, err := jwt.Parse(s, func(token *jwt.Token) (interface{}, error) {
			return pk.Public(), nil
		}); err != nil {
			t.Fatalf("token %q did not verify: %v", s, err)
		}
	}
}

func TestSignJWT_RejectsWrongCurve(t *testing.T) {
	t.Parallel()

	pk, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, &jwt.StandardClaims{Issuer: "dp3t-ws"})
	if _, err := SignJWT(token, pk); err == nil {
		t.Fatal("expected an error signing with a P-384 key")
	}
}
