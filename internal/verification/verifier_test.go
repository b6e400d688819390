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

package verification

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func testKeyPEM(tb testing.TB) (*ecdsa.PrivateKey, string) {
	tb.Helper()

	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&pk.PublicKey)
	if err != nil {
		tb.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return pk, string(pemBytes)
}

func signedToken(tb testing.TB, pk *ecdsa.PrivateKey, claims jwt.MapClaims) string {
	tb.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(pk)
	if err != nil {
		tb.Fatal(err)
	}
	return signed
}

func TestVerifyExposed(t *testing.T) {
	t.Parallel()

	pk, pubPEM := testKeyPEM(t)
	v, err := New(pubPEM, nil, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		claims  jwt.MapClaims
		wantErr error
	}{
		{
			name: "valid",
			claims: jwt.MapClaims{
				"scope": "exposed",
				"onset": "2021-06-05",
				"fake":  "0",
				"iat":   now.Unix(),
				"exp":   now.Add(time.Hour).Unix(),
			},
		},
		{
			name: "fake_token",
			claims: jwt.MapClaims{
				"scope": "exposed",
				"fake":  "1",
				"exp":   now.Add(time.Hour).Unix(),
			},
		},
		{
			name: "expired_beyond_skew",
			claims: jwt.MapClaims{
				"scope": "exposed",
				"fake":  "0",
				"exp":   now.Add(-3 * time.Hour).Unix(),
			},
			wantErr: ErrAuthFailure,
		},
		{
			name: "wrong_scope",
			claims: jwt.MapClaims{
				"scope": "exposed-next-day",
				"fake":  "0",
				"exp":   now.Add(time.Hour).Unix(),
			},
			wantErr: ErrWrongScope,
		},
		{
			name: "no_expiry",
			claims: jwt.MapClaims{
				"scope": "exposed",
				"fake":  "0",
			},
			wantErr: ErrAuthFailure,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			claims, err := v.VerifyExposed("Bearer "+signedToken(t, pk, tc.claims), now)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if claims.Scope != "exposed" {
				t.Errorf("expected scope exposed, got %q", claims.Scope)
			}
			if wantFake := tc.claims["fake"] == "1"; claims.Fake != wantFake {
				t.Errorf("expected fake=%v, got %v", wantFake, claims.Fake)
			}
		})
	}
}

func TestVerifyExposed_ExpiryWithinSkew(t *testing.T) {
	t.Parallel()

	pk, pubPEM := testKeyPEM(t)
	v, err := New(pubPEM, nil, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, pk, jwt.MapClaims{
		"scope": "exposed",
		"fake":  "0",
		"exp":   now.Add(-time.Hour).Unix(), // expired, but inside the 2h skew
	})

	if _, err := v.VerifyExposed("Bearer "+token, now); err != nil {
		t.Errorf("expected token inside skew to verify, got %v", err)
	}
}

func TestVerifyExposed_BadSignature(t *testing.T) {
	t.Parallel()

	_, pubPEM := testKeyPEM(t)
	other, _ := testKeyPEM(t)
	v, err := New(pubPEM, nil, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	token := signedToken(t, other, jwt.MapClaims{
		"scope": "exposed",
		"fake":  "0",
		"exp":   now.Add(time.Hour).Unix(),
	})

	if _, err := v.VerifyExposed("Bearer "+token, now); !errors.Is(err, ErrAuthFailure) {
		t.Errorf("expected ErrAuthFailure for foreign signature, got %v", err)
	}
}

func TestIssueAndVerifyNextDay(t *testing.T) {
	t.Parallel()

	pk, _ := testKeyPEM(t)
	_, uploadPEM := testKeyPEM(t)

	issuer := NewIssuer(pk, "dp3t-ws")
	v, err := New(uploadPEM, &pk.PublicKey, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	const delayedKeyDate = int32(2705472) // some day start interval

	token, err := issuer.IssueNextDayToken(delayedKeyDate, false, now)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := v.VerifyNextDay("Bearer "+token, now.Add(20*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if claims.Scope != ScopeExposedNextDay {
		t.Errorf("expected next day scope, got %q", claims.Scope)
	}
	if claims.DelayedKeyDate != delayedKeyDate {
		t.Errorf("expected delayedKeyDate %d, got %d", delayedKeyDate, claims.DelayedKeyDate)
	}
	if claims.ID == "" {
		t.Errorf("expected a jti for redemption")
	}

	// The upload authority's key must not verify next day tokens.
	if _, err := v.VerifyExposed("Bearer "+token, now); !errors.Is(err, ErrAuthFailure) {
		t.Errorf("expected ErrAuthFailure on the exposed surface, got %v", err)
	}
}
