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
	"context"
	"time"
)

// DataService is the storage contract for exposure keys. The persistent
// Postgres store and the in-memory fake key pool both implement it, the
// download handlers union their results.
type DataService interface {
	// UpsertExposees inserts the keys atomically. Re-uploading a key that is
	// already stored is not an error, the conflicting row is left untouched.
	// Returns the number of rows actually inserted.
	UpsertExposees(ctx context.Context, keys []*TemporaryExposureKey, now time.Time) (int, error)

	// SortedExposedSince returns keys with since <= received_at <
	// bucketStart(now), ordered by key data ascending. Country slices filter
	// by membership, empty means no filter.
	SortedExposedSince(ctx context.Context, since, now time.Time, visitedCountries, originCountries []string) ([]*TemporaryExposureKey, error)

	// ExposedForBatchReleaseTime returns the keys of the single release
	// bucket that closed at releaseTime.
	ExposedForBatchReleaseTime(ctx context.Context, releaseTime time.Time) ([]*TemporaryExposureKey, error)

	// CleanDB removes keys whose validity window ended before now minus the
	// retention period. Returns the number of rows removed.
	CleanDB(ctx context.Context, retention time.Duration) (int64, error)
}
