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

// Package gaen holds the domain model for temporary exposure keys and the
// storage contract shared by the persistent store and the fake key pool.
package gaen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"
	"time"

	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"
)

// TemporaryExposureKey is a stored exposure key. KeyData stays in its base64
// transport form, the decoded bytes are the identity of the key.
//
// Fake marks upload padding. It is carried through the insert pipeline so
// filters can act on it, but fake keys are removed before persistence and
// the field is never written to the store.
type TemporaryExposureKey struct {
	KeyData                  string
	RollingStartNumber       int32
	RollingPeriod            int32
	TransmissionRiskLevel    int32
	Fake                     bool
	ReceivedAt               time.Time
	Origin                   string
	ReportType               int32
	DaysSinceOnsetOfSymptoms int32
	VisitedCountries         []string
}

// FromUpload converts a wire key into the domain form.
func FromUpload(k *v1.GaenKey) *TemporaryExposureKey {
	return &TemporaryExposureKey{
		KeyData:               k.KeyData,
		RollingStartNumber:    k.RollingStartNumber,
		RollingPeriod:         k.RollingPeriod,
		TransmissionRiskLevel: k.TransmissionRiskLevel,
		Fake:                  k.IsFake(),
	}
}

// KeyBytes decodes the key material. Decoding is strict, padding and length
// are part of the key format contract.
func (k *TemporaryExposureKey) KeyBytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(k.KeyData)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	return b, nil
}

// StartsAt returns the instant the key's validity window opens.
func (k *TemporaryExposureKey) StartsAt() time.Time {
	return IntervalStart(k.RollingStartNumber)
}

// ExpiresAt returns the instant the key's validity window closes.
func (k *TemporaryExposureKey) ExpiresAt() time.Time {
	return IntervalStart(k.RollingStartNumber + k.RollingPeriod)
}

// IntervalNumber converts an instant to the 10 minute GAEN interval grid,
// rounding toward zero.
func IntervalNumber(t time.Time) int32 {
	return int32(t.Unix() / int64(v1.IntervalLength.Seconds()))
}

// IntervalStart is the inverse of IntervalNumber for aligned instants.
func IntervalStart(interval int32) time.Time {
	return time.Unix(int64(interval)*int64(v1.IntervalLength.Seconds()), 0).UTC()
}

// ReleaseTime computes the received_at a key accepted at now gets, which is
// the release bucket it becomes visible in. Keys whose validity window is
// still open are parked on the first bucket boundary after their expiry;
// everything else is released when the current bucket closes. The
// millisecond backoff keeps the value strictly inside its bucket so the
// half-open download window [tag, bucketStart(now)) picks it up.
func ReleaseTime(k *TemporaryExposureKey, now time.Time, bucketDuration time.Duration) time.Time {
	if expiry := k.ExpiresAt(); expiry.After(now) {
		return timeutils.NextBucket(expiry, bucketDuration)
	}
	return timeutils.NextBucket(now, bucketDuration).Add(-time.Millisecond)
}

// SortByKeyData orders keys by their decoded key bytes ascending. This order
// is an external contract, clients verify signatures over exports built in
// this order. Keys that fail to decode sort by their raw transport form,
// the insert pipeline rejects those long before export.
func SortByKeyData(keys []*TemporaryExposureKey) {
	sort.Slice(keys, func(i, j int) bool {
		bi, erri := keys[i].KeyBytes()
		bj, errj := keys[j].KeyBytes()
		if erri != nil || errj != nil {
			return keys[i].KeyData < keys[j].KeyData
		}
		return bytes.Compare(bi, bj) < 0
	})
}
