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

// Package database is the Postgres implementation of the exposure key store.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	pgx "github.com/jackc/pgx/v4"
)

// ExposedDB wraps the database handle with exposure key operations. The
// release bucket width is fixed at construction, every window computation
// in this store depends on it.
type ExposedDB struct {
	db             *database.DB
	bucketDuration time.Duration
}

// New creates an ExposedDB on the given database handle.
func New(db *database.DB, bucketDuration time.Duration) *ExposedDB {
	return &ExposedDB{
		db:             db,
		bucketDuration: bucketDuration,
	}
}

const insertExposed = `
	INSERT INTO
		t_exposed
		(key, rolling_start_number, rolling_period, transmission_risk_level,
		 received_at, origin, report_type, days_since_onset_of_symptoms,
		 visited_countries)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (key) DO NOTHING
`

// selectExposed is completed with a WHERE clause per query. Ordering by the
// decoded key bytes is an external contract, clients verify export
// signatures over content serialized in this order.
const selectExposed = `
	SELECT
		key, rolling_start_number, rolling_period, transmission_risk_level,
		received_at, origin, report_type, days_since_onset_of_symptoms,
		visited_countries
	FROM
		t_exposed
	WHERE %s
	ORDER BY decode(key, 'base64')
`

const deleteExpired = `
	DELETE FROM
		t_exposed
	WHERE
		to_timestamp((rolling_start_number + rolling_period) * 600) < $1
`

// UpsertExposees stores the keys in a single transaction. The key data is
// unique in the store, conflicting rows are left untouched so re-uploads
// are idempotent. Each key gets the received_at of the release bucket
// computed for it at now.
func (e *ExposedDB) UpsertExposees(ctx context.Context, keys []*gaen.TemporaryExposureKey, now time.Time) (int, error) {
	var inserted int

	err := e.db.InTx(ctx, pgx.ReadCommitted, func(tx pgx.Tx) error {
		inserted = 0
		for _, k := range keys {
			receivedAt := gaen.ReleaseTime(k, now, e.bucketDuration)
			visited := k.VisitedCountries
			if visited == nil {
				visited = []string{}
			}
			tag, err := tx.Exec(ctx, insertExposed,
				k.KeyData, k.RollingStartNumber, k.RollingPeriod,
				k.TransmissionRiskLevel, receivedAt,
				nullableString(k.Origin), nullableInt32(k.ReportType, k.ReportType == 0),
				k.DaysSinceOnsetOfSymptoms, visited)
			if err != nil {
				return fmt.Errorf("inserting exposure: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// SortedExposedSince returns the published keys of the half-open window
// [since, bucketStart(now)). Only keys whose validity window has closed are
// ever returned, a row parked on a future release bucket stays invisible
// even if the window bound would admit it.
func (e *ExposedDB) SortedExposedSince(ctx context.Context, since, now time.Time, visitedCountries, originCountries []string) ([]*gaen.TemporaryExposureKey, error) {
	where := `received_at >= $1 AND received_at < $2
		AND to_timestamp((rolling_start_number + rolling_period) * 600) <= $3`
	args := []interface{}{since, timeutils.BucketStart(now, e.bucketDuration), now}

	if len(visitedCountries) > 0 {
		args = append(args, visitedCountries)
		where += fmt.Sprintf(" AND visited_countries && $%d", len(args))
	}
	if len(originCountries) > 0 {
		args = append(args, originCountries)
		where += fmt.Sprintf(" AND origin = ANY($%d)", len(args))
	}

	return e.selectKeys(ctx, fmt.Sprintf(selectExposed, where), args...)
}

// ExposedForBatchReleaseTime returns the keys of the single release bucket
// that closed at releaseTime.
func (e *ExposedDB) ExposedForBatchReleaseTime(ctx context.Context, releaseTime time.Time) ([]*gaen.TemporaryExposureKey, error) {
	where := `received_at >= $1 AND received_at < $2
		AND to_timestamp((rolling_start_number + rolling_period) * 600) <= $2`
	return e.selectKeys(ctx, fmt.Sprintf(selectExposed, where),
		releaseTime.Add(-e.bucketDuration), releaseTime)
}

// CleanDB removes keys whose validity window ended before now minus the
// retention period.
func (e *ExposedDB) CleanDB(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := e.db.Pool.Exec(ctx, deleteExpired, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("deleting expired exposures: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (e *ExposedDB) selectKeys(ctx context.Context, query string, args ...interface{}) ([]*gaen.TemporaryExposureKey, error) {
	rows, err := e.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exposures: %w", err)
	}
	defer rows.Close()

	var keys []*gaen.TemporaryExposureKey
	for rows.Next() {
		var (
			k          gaen.TemporaryExposureKey
			trl        *int32
			origin     *string
			reportType *int32
			dsos       *int32
		)
		if err := rows.Scan(&k.KeyData, &k.RollingStartNumber, &k.RollingPeriod,
			&trl, &k.ReceivedAt, &origin, &reportType, &dsos, &k.VisitedCountries); err != nil {
			return nil, fmt.Errorf("scanning exposure row: %w", err)
		}
		if trl != nil {
			k.TransmissionRiskLevel = *trl
		}
		if origin != nil {
			k.Origin = *origin
		}
		if reportType != nil {
			k.ReportType = *reportType
		}
		if dsos != nil {
			k.DaysSinceOnsetOfSymptoms = *dsos
		}
		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading exposure rows: %w", err)
	}
	return keys, nil
}

func nullableInt32(v int32, null bool) *int32 {
	if null {
		return nil
	}
	return &v
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
