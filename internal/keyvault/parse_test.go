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

package keyvault

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"testing"
)

func testKey(tb testing.TB) *ecdsa.PrivateKey {
	tb.Helper()

	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatal(err)
	}
	return pk
}

func pemPKCS8(tb testing.TB, pk *ecdsa.PrivateKey) string {
	tb.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(pk)
	if err != nil {
		tb.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func pemSEC1(tb testing.TB, pk *ecdsa.PrivateKey) string {
	tb.Helper()

	der, err := x509.MarshalECPrivateKey(pk)
	if err != nil {
		tb.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func pemPKIX(tb testing.TB, pub *ecdsa.PublicKey) string {
	tb.Helper()

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		tb.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// jwkForKey builds a JWK document by hand so the test does not depend on
// the library's marshal direction.
func jwkForKey(pk *ecdsa.PrivateKey, includePrivate bool) string {
	pad := func(b []byte) string {
		padded := make([]byte, 32)
		copy(padded[32-len(b):], b)
		return base64.RawURLEncoding.EncodeToString(padded)
	}

	x := pad(pk.X.Bytes())
	y := pad(pk.Y.Bytes())
	if includePrivate {
		return fmt.Sprintf(`{"kty":"EC","crv":"P-256","x":%q,"y":%q,"d":%q}`, x, y, pad(pk.D.Bytes()))
	}
	return fmt.Sprintf(`{"kty":"EC","crv":"P-256","x":%q,"y":%q}`, x, y)
}

func TestParsePrivateKey(t *testing.T) {
	t.Parallel()

	pk := testKey(t)

	pkcs8DER, err := x509.MarshalPKCS8PrivateKey(pk)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		in   string
		err  bool
	}{
		{name: "pem_pkcs8", in: pemPKCS8(t, pk)},
		{name: "pem_sec1", in: pemSEC1(t, pk)},
		{name: "pem_with_whitespace", in: "\n  " + pemPKCS8(t, pk) + "  \n"},
		{name: "base64_der", in: base64.StdEncoding.EncodeToString(pkcs8DER)},
		{name: "base64_wrapped_pem", in: base64.StdEncoding.EncodeToString([]byte(pemSEC1(t, pk)))},
		{name: "jwk", in: jwkForKey(pk, true)},
		{name: "jwk_public_only", in: jwkForKey(pk, false), err: true},
		{name: "empty", in: "", err: true},
		{name: "garbage", in: "definitely-not-a-key", err: true},
		{name: "wrong_pem_contents", in: pemPKIX(t, &pk.PublicKey), err: true},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePrivateKey(tc.in)
			if tc.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(pk) {
				t.Fatal("parsed key differs from the original")
			}
		})
	}
}

func TestParsePublicKey(t *testing.T) {
	t.Parallel()

	pk := testKey(t)

	pkixDER, err := x509.MarshalPKIXPublicKey(&pk.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		in   string
		err  bool
	}{
		{name: "pem_pkix", in: pemPKIX(t, &pk.PublicKey)},
		{name: "base64_der", in: base64.StdEncoding.EncodeToString(pkixDER)},
		{name: "base64_wrapped_pem", in: base64.StdEncoding.EncodeToString([]byte(pemPKIX(t, &pk.PublicKey)))},
		{name: "jwk", in: jwkForKey(pk, false)},
		{name: "jwk_with_private_half", in: jwkForKey(pk, true)},
		{name: "empty", in: "", err: true},
		{name: "garbage", in: "definitely-not-a-key", err: true},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePublicKey(tc.in)
			if tc.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(&pk.PublicKey) {
				t.Fatal("parsed key differs from the original")
			}
		})
	}
}
