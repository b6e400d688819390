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

package scheduler

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	gaendb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	redeemdb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/redeem/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	"github.com/google/uuid"
)

var testDatabaseInstance *database.TestInstance

func TestMain(m *testing.M) {
	testDatabaseInstance = database.MustTestInstance()
	defer testDatabaseInstance.MustClose()
	m.Run()
}

func testKey(tb testing.TB, startsAt time.Time, rollingPeriod int32) *gaen.TemporaryExposureKey {
	tb.Helper()
	raw, err := project.RandomBytes(16)
	if err != nil {
		tb.Fatal(err)
	}
	return &gaen.TemporaryExposureKey{
		KeyData:            base64.StdEncoding.EncodeToString(raw),
		RollingStartNumber: gaen.IntervalNumber(startsAt),
		RollingPeriod:      rollingPeriod,
	}
}

func TestCleanData(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	db, _ := testDatabaseInstance.NewDatabase(t)

	store := gaendb.New(db, 2*time.Hour)
	redeem := redeemdb.New(db)
	retention := 14 * 24 * time.Hour

	now := time.Now().UTC()

	// One key far beyond retention, one from yesterday.
	oldDay := timeutils.UTCMidnight(now.AddDate(0, 0, -20))
	freshDay := timeutils.UTCMidnight(now.AddDate(0, 0, -1))
	if _, err := store.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{
		testKey(t, oldDay, 144),
	}, now.AddDate(0, 0, -20)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertExposees(ctx, []*gaen.TemporaryExposureKey{
		testKey(t, freshDay, 144),
	}, now); err != nil {
		t.Fatal(err)
	}

	// One stale redeemed token, one fresh.
	staleJTI := uuid.New().String()
	if _, err := redeem.UpsertRedeemUUID(ctx, staleJTI, now.Add(-3*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	freshJTI := uuid.New().String()
	if _, err := redeem.UpsertRedeemUUID(ctx, freshJTI, now); err != nil {
		t.Fatal(err)
	}

	s := New(db, store, redeem, nil, retention)
	if err := s.cleanData(ctx); err != nil {
		t.Fatal(err)
	}

	keys, err := store.SortedExposedSince(ctx, now.AddDate(0, 0, -30), now.Add(4*time.Hour), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Errorf("after cleanup %d keys remain, want 1", len(keys))
	}

	// The stale jti was dropped, so it redeems as new again. The fresh one
	// is still blocked.
	fresh, err := redeem.UpsertRedeemUUID(ctx, staleJTI, now)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh {
		t.Error("stale jti survived cleanup")
	}
	fresh, err = redeem.UpsertRedeemUUID(ctx, freshJTI, now)
	if err != nil {
		t.Fatal(err)
	}
	if fresh {
		t.Error("fresh jti was removed by cleanup")
	}
}

func TestRunLocked_Contention(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	db, _ := testDatabaseInstance.NewDatabase(t)
	s := New(db, nil, nil, nil, 0)

	unlock, err := db.Lock(ctx, "cleanData", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	var ran bool
	s.runLocked(ctx, "cleanData", func(context.Context) error {
		ran = true
		return nil
	})
	if ran {
		t.Fatal("job ran while the lease was held elsewhere")
	}

	if err := unlock(); err != nil {
		t.Fatal(err)
	}
	s.runLocked(ctx, "cleanData", func(context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("job did not run after the lease was released")
	}
}

func TestNextDailyRun(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"before the hour",
			time.Date(2021, 6, 10, 1, 30, 0, 0, time.UTC),
			time.Date(2021, 6, 10, 2, 0, 0, 0, time.UTC),
		},
		{
			"after the hour",
			time.Date(2021, 6, 10, 14, 0, 0, 0, time.UTC),
			time.Date(2021, 6, 11, 2, 0, 0, 0, time.UTC),
		},
		{
			"exactly on the hour",
			time.Date(2021, 6, 10, 2, 0, 0, 0, time.UTC),
			time.Date(2021, 6, 11, 2, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := nextDailyRun(tc.now, 2); !got.Equal(tc.want) {
				t.Errorf("nextDailyRun(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}
