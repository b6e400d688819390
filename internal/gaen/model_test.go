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

package gaen

import (
	"encoding/base64"
	"testing"
	"time"
)

const bucket = 2 * time.Hour

func TestIntervalNumber_RoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	n := IntervalNumber(at)
	if got, want := IntervalStart(n), at; !got.Equal(want) {
		t.Errorf("expected %v to be %v", got, want)
	}

	// Mid-interval instants round toward zero.
	if got, want := IntervalNumber(at.Add(9*time.Minute+59*time.Second)), n; got != want {
		t.Errorf("expected %v to be %v", got, want)
	}
	if got, want := IntervalNumber(at.Add(10*time.Minute)), n+1; got != want {
		t.Errorf("expected %v to be %v", got, want)
	}
}

func TestExpiresAt(t *testing.T) {
	t.Parallel()

	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	k := &TemporaryExposureKey{
		RollingStartNumber: IntervalNumber(day),
		RollingPeriod:      144,
	}

	if got, want := k.StartsAt(), day; !got.Equal(want) {
		t.Errorf("expected %v to be %v", got, want)
	}
	if got, want := k.ExpiresAt(), day.AddDate(0, 0, 1); !got.Equal(want) {
		t.Errorf("expected %v to be %v", got, want)
	}
}

func TestReleaseTime(t *testing.T) {
	t.Parallel()

	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		rp    int32
		now   time.Time
		want  time.Time
	}{
		{
			name:  "expired_key_released_at_bucket_close",
			start: day.AddDate(0, 0, -3),
			rp:    144,
			now:   day.Add(15 * time.Hour),
			want:  day.Add(16 * time.Hour).Add(-time.Millisecond),
		},
		{
			name:  "same_day_key_parks_past_midnight",
			start: day,
			rp:    144,
			now:   day.Add(10 * time.Hour),
			want:  day.AddDate(0, 0, 1).Add(2 * time.Hour),
		},
		{
			name:  "short_period_key_parks_after_expiry",
			start: day, // expires 14:10 with rp=85
			rp:    85,
			now:   day.Add(13 * time.Hour),
			want:  day.Add(16 * time.Hour),
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			k := &TemporaryExposureKey{
				RollingStartNumber: IntervalNumber(tc.start),
				RollingPeriod:      tc.rp,
			}
			if got := ReleaseTime(k, tc.now, bucket); !got.Equal(tc.want) {
				t.Errorf("expected %v to be %v", got, tc.want)
			}
		})
	}
}

func TestReleaseTime_InsideBucket(t *testing.T) {
	t.Parallel()

	// The expired-key release time must satisfy received_at < bucketStart
	// only once the upload bucket has fully closed.
	now := time.Date(2021, 6, 1, 15, 30, 0, 0, time.UTC)
	k := &TemporaryExposureKey{
		RollingStartNumber: IntervalNumber(now.AddDate(0, 0, -2)),
		RollingPeriod:      144,
	}

	got := ReleaseTime(k, now, bucket)
	sameBucketTop := time.Date(2021, 6, 1, 16, 0, 0, 0, time.UTC)
	if !got.Before(sameBucketTop) {
		t.Errorf("release time %v not inside the upload bucket ending %v", got, sameBucketTop)
	}
	if !got.After(now) {
		t.Errorf("release time %v not after now %v", got, now)
	}
}

func TestSortByKeyData(t *testing.T) {
	t.Parallel()

	enc := func(b byte) string {
		raw := make([]byte, 16)
		raw[0] = b
		return base64.StdEncoding.EncodeToString(raw)
	}

	keys := []*TemporaryExposureKey{
		{KeyData: enc(3)},
		{KeyData: enc(1)},
		{KeyData: enc(2)},
	}
	SortByKeyData(keys)

	want := []string{enc(1), enc(2), enc(3)}
	for i, k := range keys {
		if k.KeyData != want[i] {
			t.Errorf("position %d: expected %q to be %q", i, k.KeyData, want[i])
		}
	}
}
