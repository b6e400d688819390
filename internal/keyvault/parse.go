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
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/keys"
	"github.com/rakutentech/jwk-go/jwk"
)

// ParsePrivateKey decodes an EC private key from its string representation.
// Accepted forms are PEM (PKCS#8 or SEC1), a JWK document, or base64 DER.
// Base64-wrapped PEM is unwrapped first.
func ParsePrivateKey(in string) (*ecdsa.PrivateKey, error) {
	s := strings.TrimSpace(in)
	switch {
	case strings.Contains(s, "-----BEGIN"):
		return parsePrivatePEM([]byte(s))
	case strings.HasPrefix(s, "{"):
		return parsePrivateJWK(s)
	default:
		der, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("private key is not PEM, JWK, or base64: %w", err)
		}
		if bytes.Contains(der, []byte("-----BEGIN")) {
			return parsePrivatePEM(der)
		}
		return parsePrivateDER(der)
	}
}

// ParsePublicKey decodes an EC public key from its string representation.
// Accepted forms are PEM (PKIX), a JWK document, or base64 DER. A JWK
// holding a private key yields its public half.
func ParsePublicKey(in string) (*ecdsa.PublicKey, error) {
	s := strings.TrimSpace(in)
	switch {
	case strings.Contains(s, "-----BEGIN"):
		return keys.ParseECDSAPublicKey(s)
	case strings.HasPrefix(s, "{"):
		return parsePublicJWK(s)
	default:
		der, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("public key is not PEM, JWK, or base64: %w", err)
		}
		if bytes.Contains(der, []byte("-----BEGIN")) {
			return keys.ParseECDSAPublicKey(string(der))
		}
		return parsePublicDER(der)
	}
}

func parsePrivatePEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("unable to decode PEM block containing private key")
	}
	return parsePrivateDER(block.Bytes)
}

func parsePrivateDER(der []byte) (*ecdsa.PrivateKey, error) {
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		pk, ok := k.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type: %T", k)
		}
		return pk, nil
	}
	pk, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key as PKCS#8 or SEC1: %w", err)
	}
	return pk, nil
}

func parsePrivateJWK(s string) (*ecdsa.PrivateKey, error) {
	var j jwk.JWK
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return nil, fmt.Errorf("unmarshal JWK: %w", err)
	}
	spec, err := j.ParseKeySpec()
	if err != nil {
		return nil, fmt.Errorf("parse JWK: %w", err)
	}
	pk, ok := spec.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("JWK does not hold an EC private key (got %T)", spec.Key)
	}
	return pk, nil
}

func parsePublicJWK(s string) (*ecdsa.PublicKey, error) {
	var j jwk.JWK
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return nil, fmt.Errorf("unmarshal JWK: %w", err)
	}
	spec, err := j.ParseKeySpec()
	if err != nil {
		return nil, fmt.Errorf("parse JWK: %w", err)
	}
	switch typ := spec.Key.(type) {
	case *ecdsa.PublicKey:
		return typ, nil
	case *ecdsa.PrivateKey:
		return &typ.PublicKey, nil
	default:
		return nil, fmt.Errorf("JWK does not hold an EC key (got %T)", spec.Key)
	}
}

func parsePublicDER(der []byte) (*ecdsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("x509.ParsePKIXPublicKey: %w", err)
	}
	ec, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
	return ec, nil
}
