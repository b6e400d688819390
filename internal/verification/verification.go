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

// Package verification parses and verifies the upload bearer tokens and
// issues the next day tokens of the V1 delayed key protocol.
package verification

import (
	"errors"
	"time"
)

// Scopes a token can authorize.
const (
	ScopeExposed        = "exposed"
	ScopeExposedNextDay = "exposed-next-day"
)

var (
	// ErrAuthFailure covers unparseable tokens, bad signatures, expiry and
	// replay. It maps to 403 without detail, callers log the wrapped cause.
	ErrAuthFailure = errors.New("token verification failed")

	// ErrWrongScope is returned when the token is valid but authorizes a
	// different endpoint.
	ErrWrongScope = errors.New("token has wrong scope")
)

// Claims are the verified upload token claims the pipeline consumes.
type Claims struct {
	// ID is the token's jti, redeemed for single-use tokens.
	ID string

	// Scope is either ScopeExposed or ScopeExposedNextDay.
	Scope string

	// Onset is the day of symptom onset. Keys older than this day are not
	// acceptable. Zero when the token carries no onset.
	Onset time.Time

	// Fake marks tokens issued for padding traffic, the matching upload
	// must consist of fake keys only.
	Fake bool

	// DelayedKeyDate is the 10 minute interval of the day start the next
	// day token authorizes. Only set on next day tokens.
	DelayedKeyDate int32

	// ExpiresAt is the verified token expiry.
	ExpiresAt time.Time
}
