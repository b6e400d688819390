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

// Package database implements the single-use token ledger. Next day upload
// tokens carry a jti claim, recording it here bounds replay to one use.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
)

// RedeemDB wraps the database handle with redeem operations.
type RedeemDB struct {
	db *database.DB
}

// New creates a RedeemDB on the given database handle.
func New(db *database.DB) *RedeemDB {
	return &RedeemDB{db: db}
}

const insertRedeem = `
	INSERT INTO
		t_redeem
		(uuid, received_at)
	VALUES
		($1, $2)
	ON CONFLICT (uuid) DO NOTHING
`

const deleteRedeemed = `
	DELETE FROM
		t_redeem
	WHERE
		received_at < $1
`

// UpsertRedeemUUID records the token id and reports whether it was
// previously unseen. A false return means the token has already been
// redeemed.
func (r *RedeemDB) UpsertRedeemUUID(ctx context.Context, uuid string, now time.Time) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, insertRedeem, uuid, now)
	if err != nil {
		return false, fmt.Errorf("recording redeemed token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CleanDB removes entries recorded before now minus the retention period.
// Entries only need to outlive the token expiry they guard.
func (r *RedeemDB) CleanDB(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, deleteRedeemed, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("deleting redeemed tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
