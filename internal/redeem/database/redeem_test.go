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
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"

	"github.com/google/uuid"
)

var testDatabaseInstance *database.TestInstance

func TestMain(m *testing.M) {
	testDatabaseInstance = database.MustTestInstance()
	defer testDatabaseInstance.MustClose()
	m.Run()
}

func TestUpsertRedeemUUID(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	redeemDB := New(testDB)

	now := time.Now().UTC()
	id := uuid.New().String()

	fresh, err := redeemDB.UpsertRedeemUUID(ctx, id, now)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh {
		t.Errorf("expected first redemption to succeed")
	}

	replayed, err := redeemDB.UpsertRedeemUUID(ctx, id, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if replayed {
		t.Errorf("expected replay to be rejected")
	}
}

func TestRedeemCleanDB(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)
	redeemDB := New(testDB)

	now := time.Now().UTC()
	stale := uuid.New().String()
	fresh := uuid.New().String()

	if _, err := redeemDB.UpsertRedeemUUID(ctx, stale, now.AddDate(0, 0, -3)); err != nil {
		t.Fatal(err)
	}
	if _, err := redeemDB.UpsertRedeemUUID(ctx, fresh, now); err != nil {
		t.Fatal(err)
	}

	deleted, err := redeemDB.CleanDB(ctx, 2*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := deleted, int64(1); got != want {
		t.Errorf("expected %d deletions, got %d", want, got)
	}

	// The stale id can be redeemed again once its record is gone, the token
	// it guarded expired long before.
	fresh2, err := redeemDB.UpsertRedeemUUID(ctx, stale, now)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh2 {
		t.Errorf("expected cleaned id to be redeemable again")
	}
}
