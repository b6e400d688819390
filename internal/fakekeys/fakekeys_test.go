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

package fakekeys

import (
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
)

func testConfig() Config {
	return Config{
		Amount:         10,
		RetentionDays:  14,
		KeySizeBytes:   16,
		BucketDuration: 2 * time.Hour,
		Origin:         "ES",
		ReportType:     1,
	}
}

func TestRefresh_CoversWindow(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	svc := New(testConfig())

	now := time.Date(2021, 6, 10, 11, 30, 0, 0, time.UTC)
	if err := svc.Refresh(ctx, now); err != nil {
		t.Fatal(err)
	}

	// The clamped window covers 14 whole days: the oldest day's midnight
	// falls before since, today's midnight is inside the bucket bound.
	since := now.AddDate(0, 0, -14)
	keys, err := svc.SortedExposedSince(ctx, since, now, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 14 full past days plus today.
	if got, want := len(keys), 10*14; got != want {
		t.Errorf("expected %d keys, got %d", want, got)
	}

	for _, k := range keys {
		if k.Fake {
			t.Errorf("synthetic keys must not carry the fake marker")
		}
		if k.RollingPeriod != 144 {
			t.Errorf("expected rolling period 144, got %d", k.RollingPeriod)
		}
		if k.Origin != "ES" || k.ReportType != 1 {
			t.Errorf("expected EFGS stamp, got origin=%q reportType=%d", k.Origin, k.ReportType)
		}
	}
}

func TestRefresh_StableWithinDay(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	svc := New(testConfig())

	now := time.Date(2021, 6, 10, 2, 0, 0, 0, time.UTC)
	if err := svc.Refresh(ctx, now); err != nil {
		t.Fatal(err)
	}
	first, err := svc.SortedExposedSince(ctx, now.AddDate(0, 0, -14), now, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Refreshing again later the same day changes nothing.
	later := now.Add(10 * time.Hour)
	if err := svc.Refresh(ctx, later); err != nil {
		t.Fatal(err)
	}
	second, err := svc.SortedExposedSince(ctx, now.AddDate(0, 0, -14), later, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("pool size changed within a day: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].KeyData != second[i].KeyData {
			t.Fatalf("pool content changed within a day at %d", i)
		}
	}
}

func TestRefresh_RollsTheWindow(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	svc := New(testConfig())

	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	if err := svc.Refresh(ctx, now); err != nil {
		t.Fatal(err)
	}
	day1, err := svc.SortedExposedSince(ctx, time.Unix(0, 0), now, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The next day the oldest day is dropped and a fresh day appears, the
	// overall size within the retention window stays the same.
	next := now.AddDate(0, 0, 1)
	if err := svc.Refresh(ctx, next); err != nil {
		t.Fatal(err)
	}
	day2, err := svc.SortedExposedSince(ctx, time.Unix(0, 0), next, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(day1) != len(day2) {
		t.Errorf("expected stable pool size across days, got %d then %d", len(day1), len(day2))
	}

	seen := make(map[string]bool, len(day1))
	for _, k := range day1 {
		seen[k.KeyData] = true
	}
	var carried int
	for _, k := range day2 {
		if seen[k.KeyData] {
			carried++
		}
	}
	// One day dropped, one generated: 14 of 15 days carry over.
	if got, want := carried, 10*14; got != want {
		t.Errorf("expected %d carried keys, got %d", want, got)
	}
}

func TestSortedExposedSince_CountryFilter(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	svc := New(testConfig())

	now := time.Date(2021, 6, 10, 12, 0, 0, 0, time.UTC)
	if err := svc.Refresh(ctx, now); err != nil {
		t.Fatal(err)
	}

	keys, err := svc.SortedExposedSince(ctx, time.Unix(0, 0), now, []string{"ES"}, []string{"ES"})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) == 0 {
		t.Errorf("expected stamped keys to pass their own country filter")
	}

	keys, err = svc.SortedExposedSince(ctx, time.Unix(0, 0), now, nil, []string{"DE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("expected foreign origin filter to exclude the pool, got %d", len(keys))
	}
}

var _ gaen.DataService = (*Service)(nil)
