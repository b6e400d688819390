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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"

	"github.com/golang-jwt/jwt"
)

// onsetLayout is the day-granularity onset claim format.
const onsetLayout = "2006-01-02"

// Verifier checks upload tokens. Exposed uploads are verified against the
// external upload authority's public key, next day uploads against the
// service's own nextDayJWT pair.
type Verifier struct {
	uploadKey  *ecdsa.PublicKey
	nextDayKey *ecdsa.PublicKey
	skew       time.Duration

	// passthrough accepts any bearer, for handler tests only.
	passthrough bool
}

// New creates a Verifier. uploadKey is the PEM or JWK encoded public key of
// the authority that signs diagnosis tokens.
func New(uploadKey string, nextDayKey *ecdsa.PublicKey, skew time.Duration) (*Verifier, error) {
	pub, err := keyvault.ParsePublicKey(uploadKey)
	if err != nil {
		return nil, fmt.Errorf("parsing upload authority key: %w", err)
	}
	return &Verifier{
		uploadKey:  pub,
		nextDayKey: nextDayKey,
		skew:       skew,
	}, nil
}

// NewPassthrough creates a Verifier that accepts every token without
// checking anything. Tests only.
func NewPassthrough() *Verifier {
	return &Verifier{passthrough: true}
}

// VerifyExposed verifies the Authorization header of an exposed upload and
// returns its claims.
func (v *Verifier) VerifyExposed(authorization string, now time.Time) (*Claims, error) {
	return v.verify(authorization, v.uploadKey, ScopeExposed, now)
}

// VerifyNextDay verifies the Authorization header of a next day upload. The
// token must have been issued by this service.
func (v *Verifier) VerifyNextDay(authorization string, now time.Time) (*Claims, error) {
	return v.verify(authorization, v.nextDayKey, ScopeExposedNextDay, now)
}

func (v *Verifier) verify(authorization string, key *ecdsa.PublicKey, wantScope string, now time.Time) (*Claims, error) {
	if v.passthrough {
		return &Claims{Scope: wantScope}, nil
	}

	// Clients have been seen sending tokens with BOMs and other
	// non-printable padding around the header value.
	raw := project.TrimSpaceAndNonPrintable(strings.TrimPrefix(authorization, "Bearer"))
	if raw == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrAuthFailure)
	}

	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodES256.Alg()},
		SkipClaimsValidation: true, // expiry is checked below with skew
	}
	mc := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(raw, mc, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	claims, err := fromMapClaims(mc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	if claims.ExpiresAt.IsZero() || now.After(claims.ExpiresAt.Add(v.skew)) {
		return nil, fmt.Errorf("%w: token expired", ErrAuthFailure)
	}
	if claims.Scope != wantScope {
		return nil, fmt.Errorf("%w: got %q", ErrWrongScope, claims.Scope)
	}
	return claims, nil
}

func fromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	c := &Claims{}

	if v, ok := mc["jti"].(string); ok {
		c.ID = v
	}
	if v, ok := mc["scope"].(string); ok {
		c.Scope = v
	}
	if v, ok := mc["exp"]; ok {
		sec, err := numericClaim(v)
		if err != nil {
			return nil, fmt.Errorf("exp claim: %w", err)
		}
		c.ExpiresAt = time.Unix(sec, 0).UTC()
	}
	if v, ok := mc["onset"].(string); ok {
		onset, err := time.Parse(onsetLayout, v)
		if err != nil {
			return nil, fmt.Errorf("onset claim: %w", err)
		}
		c.Onset = onset
	}

	fake, err := flagClaim(mc["fake"])
	if err != nil {
		return nil, fmt.Errorf("fake claim: %w", err)
	}
	c.Fake = fake

	if v, ok := mc["delayedKeyDate"]; ok {
		n, err := numericClaim(v)
		if err != nil {
			return nil, fmt.Errorf("delayedKeyDate claim: %w", err)
		}
		c.DelayedKeyDate = int32(n)
	}

	return c, nil
}

// numericClaim accepts the number and string encodings both seen in the
// wild for numeric claims.
func numericClaim(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func flagClaim(v interface{}) (bool, error) {
	if v == nil {
		return false, nil
	}
	n, err := numericClaim(v)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
