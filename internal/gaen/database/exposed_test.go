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

package database

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
)

var testDatabaseInstance *database.TestInstance

func TestMain(m *testing.M) {
	testDatabaseInstance = database.MustTestInstance()
	defer testDatabaseInstance.MustClose()
	m.Run()
}

const bucket = 2 * time.Hour

func testRandomKey(tb testing.TB, start time.Time, rp int32) *gaen.TemporaryExposureKey {
	tb.Helper()

	raw, err := project.RandomBytes(16)
	if err != nil {
		tb.Fatal(err)
	}
	return &gaen.TemporaryExposureKey{
		KeyData:            base64.StdEncoding.EncodeToString(raw),
		RollingStartNumber: gaen.IntervalNumber(start),
		RollingPeriod:      rp,
	}
}

func TestUpsertExposees_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	exposedDB := New(testDB, bucket)

	now := time.Date(2021, 6, 10, 11, 30, 0, 0, time.UTC)
	keys := []*gaen.TemporaryExposureKey{
		testRandomKey(t, now.AddDate(0, 0, -2), 144),
		testRandomKey(t, now.AddDate(0, 0, -1), 144),
	}

	n, err := exposedDB.UpsertExposees(ctx, keys, now)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := n, 2; got != want {
		t.Errorf("expected %d inserts, got %d", want, got)
	}

	// Same upload again, nothing changes.
	n, err = exposedDB.UpsertExposees(ctx, keys, now.Add(5*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := n, 0; got != want {
		t.Errorf("expected %d inserts, got %d", want, got)
	}

	later := now.Add(2 * bucket)
	got, err := exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), later, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(got))
	}
}

func TestSortedExposedSince_BucketBoundaries(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	exposedDB := New(testDB, bucket)

	now := time.Date(2021, 6, 10, 11, 30, 0, 0, time.UTC)
	old := testRandomKey(t, now.AddDate(0, 0, -3), 144)
	sameDay := testRandomKey(t, now.Truncate(24*time.Hour), 144)

	if _, err := exposedDB.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{old, sameDay}, now); err != nil {
		t.Fatal(err)
	}

	// Inside the upload bucket nothing is visible.
	got, err := exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), now.Add(time.Minute), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no keys before the bucket closes, got %d", len(got))
	}

	// After the bucket closes the expired key is visible, the same-day key
	// stays parked on its post-expiry bucket.
	got, err = exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), now.Add(bucket), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 key after the bucket closed, got %d", len(got))
	}
	if got[0].KeyData != old.KeyData {
		t.Errorf("expected the expired key, got %q", got[0].KeyData)
	}

	// The day after, once the same-day key's release bucket has closed too,
	// both are visible.
	dayAfter := now.AddDate(0, 0, 1).Truncate(24 * time.Hour).Add(4 * time.Hour)
	got, err = exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), dayAfter, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 keys the day after, got %d", len(got))
	}
}

func TestSortedExposedSince_CountryFilters(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	exposedDB := New(testDB, bucket)

	now := time.Date(2021, 6, 10, 11, 30, 0, 0, time.UTC)

	es := testRandomKey(t, now.AddDate(0, 0, -2), 144)
	es.Origin = "ES"
	es.VisitedCountries = []string{"ES", "PT"}

	de := testRandomKey(t, now.AddDate(0, 0, -2), 144)
	de.Origin = "DE"
	de.VisitedCountries = []string{"DE"}

	if _, err := exposedDB.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{es, de}, now); err != nil {
		t.Fatal(err)
	}
	later := now.Add(bucket)

	cases := []struct {
		name    string
		visited []string
		origins []string
		want    int
	}{
		{name: "no_filter", want: 2},
		{name: "visited_overlap", visited: []string{"PT"}, want: 1},
		{name: "origin_match", origins: []string{"DE"}, want: 1},
		{name: "origin_miss", origins: []string{"IT"}, want: 0},
		{name: "both", visited: []string{"ES"}, origins: []string{"ES"}, want: 1},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), later, tc.visited, tc.origins)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tc.want {
				t.Errorf("expected %d keys, got %d", tc.want, len(got))
			}
		})
	}
}

func TestExposedForBatchReleaseTime(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	exposedDB := New(testDB, bucket)

	now := time.Date(2021, 6, 10, 11, 30, 0, 0, time.UTC)
	k := testRandomKey(t, now.AddDate(0, 0, -2), 144)
	if _, err := exposedDB.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{k}, now); err != nil {
		t.Fatal(err)
	}

	// The key was parked just inside the bucket closing at 12:00.
	batch := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	got, err := exposedDB.ExposedForBatchReleaseTime(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 key in batch, got %d", len(got))
	}

	got, err = exposedDB.ExposedForBatchReleaseTime(ctx, batch.Add(bucket))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty follow-up batch, got %d", len(got))
	}
}

func TestCleanDB(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	exposedDB := New(testDB, bucket)

	now := time.Now().UTC()
	fresh := testRandomKey(t, now.AddDate(0, 0, -2), 144)
	stale := testRandomKey(t, now.AddDate(0, 0, -20), 144)

	if _, err := exposedDB.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{fresh, stale}, now); err != nil {
		t.Fatal(err)
	}

	deleted, err := exposedDB.CleanDB(ctx, 14*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := deleted, int64(1); got != want {
		t.Errorf("expected %d deletions, got %d", want, got)
	}

	got, err := exposedDB.SortedExposedSince(ctx, time.Unix(0, 0), now.Add(bucket), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].KeyData != fresh.KeyData {
		t.Errorf("expected only the fresh key to survive, got %d keys", len(got))
	}
}
