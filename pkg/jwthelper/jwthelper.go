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

// Package jwthelper signs JWTs with an opaque crypto.Signer so that keys
// held in an external KMS can issue tokens.
package jwthelper

import (
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"encoding/asn1"
	"fmt"
	"math/big"
	"strings"

	"github.com/golang-jwt/jwt"
)

// An ES256 JWS signature is two 32 byte big-endian integers.
const es256SignatureSize = 64

// SignJWT signs the token with the provided signer. The signer must hold a
// P-256 key. The DER signature returned by the signer is repacked into the
// fixed width R || S form JWS requires.
func SignJWT(token *jwt.Token, signer crypto.Signer) (string, error) {
	signingString, err := token.SigningString()
	if err != nil {
		return "", fmt.Errorf("failed to build signing string: %w", err)
	}

	digest := sha256.Sum256([]byte(signingString))
	sig, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	var parsed struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(sig, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	rb, sb := parsed.R.Bytes(), parsed.S.Bytes()
	if len(rb) > es256SignatureSize/2 || len(sb) > es256SignatureSize/2 {
		return "", fmt.Errorf("signature does not fit ES256, signer must hold a P-256 key")
	}

	packed := make([]byte, es256SignatureSize)
	copy(packed[es256SignatureSize/2-len(rb):], rb)
	copy(packed[es256SignatureSize-len(sb):], sb)

	return strings.Join([]string{signingString, jwt.EncodeSegment(packed)}, "."), nil
}
