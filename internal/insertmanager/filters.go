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

package insertmanager

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"
)

// AssertKeyFormat raises on any key whose material is not exactly the
// configured size, canonically encoded, or whose start interval is
// negative.
type AssertKeyFormat struct {
	KeySizeBytes int
}

func (f *AssertKeyFormat) Name() string { return "AssertKeyFormat" }

func (f *AssertKeyFormat) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	wantEncoded := base64.StdEncoding.EncodedLen(f.KeySizeBytes)
	for _, k := range keys {
		if len(k.KeyData) != wantEncoded {
			return nil, fmt.Errorf("%w: wrong encoded length", ErrBadKeyFormat)
		}
		raw, err := k.KeyBytes()
		if err != nil {
			return nil, fmt.Errorf("%w: not base64", ErrBadKeyFormat)
		}
		if len(raw) != f.KeySizeBytes {
			return nil, fmt.Errorf("%w: wrong key length", ErrBadKeyFormat)
		}
		if k.RollingStartNumber < 0 {
			return nil, fmt.Errorf("%w: negative start interval", ErrBadKeyFormat)
		}
	}
	return keys, nil
}

// EnforceMatchingJWTClaims checks the upload against the verified token: a
// fake token must carry only fake keys, and no real key may predate the
// onset day the health authority attested.
type EnforceMatchingJWTClaims struct{}

func (f *EnforceMatchingJWTClaims) Name() string { return "EnforceMatchingJWTClaims" }

func (f *EnforceMatchingJWTClaims) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	claims := upload.Claims
	if claims == nil {
		return keys, nil
	}

	if claims.Fake {
		for _, k := range keys {
			if !k.Fake {
				return nil, fmt.Errorf("%w: fake token with real keys", verification.ErrWrongScope)
			}
		}
		return keys, nil
	}

	if !claims.Onset.IsZero() {
		onsetDay := timeutils.UTCMidnight(claims.Onset)
		for _, k := range keys {
			if k.Fake {
				continue
			}
			if keyDay := timeutils.UTCMidnight(k.StartsAt()); keyDay.Before(onsetDay) {
				return nil, fmt.Errorf("%w: key day %v, onset %v", ErrClaimIsBeforeOnset, keyDay, onsetDay)
			}
		}
	}
	return keys, nil
}

// EnforceRetentionPeriod drops keys whose validity window closed before the
// retention horizon. They would never be published, storing them only
// feeds the next sweep.
type EnforceRetentionPeriod struct {
	Retention time.Duration
}

func (f *EnforceRetentionPeriod) Name() string { return "EnforceRetentionPeriod" }

func (f *EnforceRetentionPeriod) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	horizon := upload.Now.Add(-f.Retention)
	out := keys[:0]
	for _, k := range keys {
		if k.ExpiresAt().Before(horizon) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

// RemoveKeysFromFuture drops keys that start after the current day. Used on
// the next day surface, where only yesterday's key is expected.
type RemoveKeysFromFuture struct{}

func (f *RemoveKeysFromFuture) Name() string { return "RemoveKeysFromFuture" }

func (f *RemoveKeysFromFuture) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	tomorrow := timeutils.UTCMidnight(upload.Now).AddDate(0, 0, 1)
	out := keys[:0]
	for _, k := range keys {
		if !k.StartsAt().Before(tomorrow) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

// RemoveFakeKeys drops upload padding. Runs after the format and claim
// checks so padding is validated like real keys.
type RemoveFakeKeys struct{}

func (f *RemoveFakeKeys) Name() string { return "RemoveFakeKeys" }

func (f *RemoveFakeKeys) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	out := keys[:0]
	for _, k := range keys {
		if k.Fake {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

// EnforceValidRollingPeriod raises on rolling periods outside [1,144].
// AllowZero admits the zero rolling period of legacy Android clients; the
// matching modifier rewrites it to a full day further down the pipeline.
type EnforceValidRollingPeriod struct {
	AllowZero bool
}

func (f *EnforceValidRollingPeriod) Name() string { return "EnforceValidRollingPeriod" }

func (f *EnforceValidRollingPeriod) Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error) {
	for _, k := range keys {
		if k.RollingPeriod == 0 && f.AllowZero {
			continue
		}
		if k.RollingPeriod < v1.MinRollingPeriod || k.RollingPeriod > v1.MaxRollingPeriod {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRollingPeriod, k.RollingPeriod)
		}
	}
	return keys, nil
}
