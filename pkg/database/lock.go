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
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrAlreadyLocked is returned if the lock is already in use.
var ErrAlreadyLocked = errors.New("lock already in use")

// UnlockFn can be deferred to release a lock.
type UnlockFn func() error

const acquireLease = `
	INSERT INTO
		t_shedlock
		(name, lock_until, locked_at, locked_by)
	VALUES
		($1, $2, $3, $4)
	ON CONFLICT (name) DO UPDATE
		SET lock_until = excluded.lock_until,
		    locked_at  = excluded.locked_at,
		    locked_by  = excluded.locked_by
	WHERE
		t_shedlock.lock_until <= excluded.locked_at
`

const releaseLease = `
	UPDATE
		t_shedlock
	SET
		lock_until = $2
	WHERE
		name = $1
`

// Lock acquires the lease with the given name for at most ttl. It returns an
// UnlockFn that releases the lease, or ErrAlreadyLocked if another holder's
// lease has not yet expired. The lease row is never deleted, releasing sets
// lock_until to the current time so the next acquisition succeeds.
func (db *DB) Lock(ctx context.Context, name string, ttl time.Duration) (UnlockFn, error) {
	now := time.Now().UTC()

	tag, err := db.Pool.Exec(ctx, acquireLease, name, now.Add(ttl), now, lockedBy())
	if err != nil {
		return nil, fmt.Errorf("acquiring lease %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyLocked
	}

	return func() error {
		if _, err := db.Pool.Exec(ctx, releaseLease, name, time.Now().UTC()); err != nil {
			return fmt.Errorf("releasing lease %q: %w", name, err)
		}
		return nil
	}, nil
}

// lockedBy identifies this instance in the lease table.
func lockedBy() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
