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
	"crypto"
	"fmt"
	"strconv"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/jwthelper"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// nextDayTokenValidity gives the client the whole following day plus slack
// to deliver its delayed key.
const nextDayTokenValidity = 30 * time.Hour

// Issuer signs next day tokens with the service's nextDayJWT key.
type Issuer struct {
	signer crypto.Signer
	issuer string
}

// NewIssuer creates an Issuer signing with the given key.
func NewIssuer(signer crypto.Signer, issuer string) *Issuer {
	return &Issuer{signer: signer, issuer: issuer}
}

// IssueNextDayToken builds the token a successful V1 upload returns. It
// authorizes exactly one upload of the key starting at delayedKeyDate; the
// fake marker of the original token is propagated so padding traffic stays
// padded end to end.
func (i *Issuer) IssueNextDayToken(delayedKeyDate int32, fake bool, now time.Time) (string, error) {
	fakeClaim := "0"
	if fake {
		fakeClaim = "1"
	}

	claims := jwt.MapClaims{
		"jti":            uuid.New().String(),
		"iss":            i.issuer,
		"iat":            now.Unix(),
		"exp":            now.Add(nextDayTokenValidity).Unix(),
		"scope":          ScopeExposedNextDay,
		"delayedKeyDate": strconv.FormatInt(int64(delayedKeyDate), 10),
		"fake":           fakeClaim,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := jwthelper.SignJWT(token, i.signer)
	if err != nil {
		return "", fmt.Errorf("signing next day token: %w", err)
	}
	return signed, nil
}
