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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
)

func TestLock(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)

	const (
		id1 = "cleanData"
		id2 = "updateFakeKeys"
	)

	mustLock := func(id string, ttl time.Duration) UnlockFn {
		t.Helper()
		unlock, err := testDB.Lock(ctx, id, ttl)
		if err != nil {
			t.Fatal(err)
		}
		return unlock
	}

	// Grab a free lease.
	unlock1 := mustLock(id1, time.Hour)

	// Fail to grab a held lease.
	if _, err := testDB.Lock(ctx, id1, time.Hour); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("got %v, wanted ErrAlreadyLocked", err)
	}
	unlock2 := mustLock(id2, time.Hour)
	// Release the first lease.
	if err := unlock1(); err != nil {
		t.Fatal(err)
	}

	// Re-acquire the first lease, briefly.
	_ = mustLock(id1, time.Microsecond)

	// We can acquire the lease after it expires, even unreleased.
	time.Sleep(50 * time.Millisecond)
	unlock1 = mustLock(id1, time.Hour)

	// Release both leases.
	if err := unlock1(); err != nil {
		t.Fatal(err)
	}
	if err := unlock2(); err != nil {
		t.Fatal(err)
	}

	// Rows stay behind with an expired lock_until.
	conn, err := testDB.Pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Release()

	var lockUntil time.Time
	if err := conn.QueryRow(ctx, `SELECT lock_until FROM t_shedlock WHERE name = $1`, id1).Scan(&lockUntil); err != nil {
		t.Fatal(err)
	}
	if now := time.Now().UTC(); lockUntil.After(now) {
		t.Fatalf("expected lease to be expired, lock_until %v is after %v", lockUntil, now)
	}
}

// TestLock_contention attempts to test that high lock contention does not
// result in database-level errors, specifically with respect to transaction
// isolation levels and dirty reads.
func TestLock_contention(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	testDB, _ := testDatabaseInstance.NewDatabase(t)

	var wg sync.WaitGroup
	errCh := make(chan error, 100)
	for i := 0; i < 10; i++ {
		lockID := fmt.Sprintf("lock_%d", i)

		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				unlock, err := testDB.Lock(ctx, lockID, 5*time.Second)
				if err != nil {
					select {
					case errCh <- fmt.Errorf("failed to lock %s: %w", lockID, err):
					default:
					}
				}
				if unlock != nil {
					if err := unlock(); err != nil {
						select {
						case errCh <- fmt.Errorf("failed to unlock %s: %w", lockID, err):
						default:
						}
					}
				}
			}()
		}
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil && !errors.Is(err, ErrAlreadyLocked) {
			t.Error(err)
		}
	}
}
