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

package timeutils

import (
	"time"
)

// Release buckets form a grid of fixed-width windows anchored at the Unix
// epoch, in UTC. Keys only become visible to clients when the bucket holding
// their release time has closed, so all download endpoints agree on window
// boundaries regardless of when within a bucket they are called.

// BucketStart returns the start of the bucket that contains t. The grid is
// anchored at the Unix epoch, so this is NOT the same as t.Truncate for
// durations that do not divide the epoch offset.
func BucketStart(t time.Time, d time.Duration) time.Time {
	ms := t.UnixMilli()
	dms := d.Milliseconds()
	return time.UnixMilli((ms / dms) * dms).UTC()
}

// NextBucket returns the start of the bucket after the one that contains t.
// For a t already on a bucket boundary this is t+d.
func NextBucket(t time.Time, d time.Duration) time.Time {
	return BucketStart(t, d).Add(d)
}

// IsBucketAligned reports whether t falls exactly on a bucket boundary.
func IsBucketAligned(t time.Time, d time.Duration) bool {
	return t.UnixMilli()%d.Milliseconds() == 0
}
