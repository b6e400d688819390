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

// Package scheduler runs the periodic background jobs of the service:
// removal of expired data and the daily refresh of the synthetic key pool.
// Every guarded run takes a database lease first, so the jobs execute once
// per period no matter how many instances are deployed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/fakekeys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	mscheduler "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/scheduler"
	redeemdb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/redeem/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	"github.com/hashicorp/go-multierror"
	"go.opencensus.io/stats"
)

const (
	cleanDataLock      = "cleanData"
	updateFakeKeysLock = "updateFakeKeys"

	// lockAtMostFor bounds how long a crashed holder blocks the next run.
	lockAtMostFor = 30 * time.Minute

	cleanDataFirstDelay = time.Minute
	cleanDataInterval   = time.Hour

	// updateFakeKeysHour is the UTC hour of the daily pool refresh.
	updateFakeKeysHour = 2

	// redeemRetention keeps redeemed jtis around for the full validity of a
	// next day token plus slack.
	redeemRetention = 48 * time.Hour
)

// Scheduler owns the background jobs. Start launches them, they stop with
// the context.
type Scheduler struct {
	db        *database.DB
	store     gaen.DataService
	redeem    *redeemdb.RedeemDB
	fakeKeys  *fakekeys.Service
	retention time.Duration
}

// New assembles a Scheduler. fakeKeys may be nil, in which case the daily
// refresh job is not scheduled.
func New(db *database.DB, store gaen.DataService, redeem *redeemdb.RedeemDB, fakeKeys *fakekeys.Service, retention time.Duration) *Scheduler {
	return &Scheduler{
		db:        db,
		store:     store,
		redeem:    redeem,
		fakeKeys:  fakeKeys,
		retention: retention,
	}
}

// Start warms up the synthetic pool and launches the periodic jobs. The
// warm-up is deliberately unguarded: the pool is in-memory and every
// instance needs its own copy.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.fakeKeys != nil {
		if err := s.fakeKeys.Refresh(ctx, time.Now().UTC()); err != nil {
			return fmt.Errorf("warming up fake key pool: %w", err)
		}
	}

	go s.runEvery(ctx, cleanDataLock, cleanDataFirstDelay, cleanDataInterval, s.cleanData)
	if s.fakeKeys != nil {
		go s.runDaily(ctx, updateFakeKeysLock, updateFakeKeysHour, s.updateFakeKeys)
	}
	return nil
}

func (s *Scheduler) runEvery(ctx context.Context, name string, firstDelay, interval time.Duration, job func(context.Context) error) {
	timer := time.NewTimer(firstDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.runLocked(ctx, name, job)
		timer.Reset(interval)
	}
}

func (s *Scheduler) runDaily(ctx context.Context, name string, hour int, job func(context.Context) error) {
	for {
		timer := time.NewTimer(time.Until(nextDailyRun(time.Now().UTC(), hour)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		s.runLocked(ctx, name, job)
	}
}

// nextDailyRun is the next instant the daily job fires, strictly after now.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := timeutils.UTCMidnight(now).Add(time.Duration(hour) * time.Hour)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// runLocked executes the job under the named lease. Losing the lease to
// another instance is a skip, not an error.
func (s *Scheduler) runLocked(ctx context.Context, name string, job func(context.Context) error) {
	logger := logging.FromContext(ctx).Named("scheduler." + name)

	unlock, err := s.db.Lock(ctx, name, lockAtMostFor)
	if errors.Is(err, database.ErrAlreadyLocked) {
		stats.Record(ctx, mscheduler.LockContention.M(1))
		logger.Debugw("another instance holds the lease, skipping")
		return
	}
	if err != nil {
		logger.Errorw("acquiring lease", "error", err)
		return
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Errorw("releasing lease", "error", err)
		}
	}()

	started := time.Now()
	if err := job(ctx); err != nil {
		logger.Errorw("job failed", "error", err)
		return
	}
	logger.Infow("job finished", "duration", time.Since(started))
}

// cleanData removes exposures past retention and redeemed jtis past their
// token validity.
func (s *Scheduler) cleanData(ctx context.Context) error {
	var merr *multierror.Error

	exposures, err := s.store.CleanDB(ctx, s.retention)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("cleaning exposures: %w", err))
	} else {
		stats.Record(ctx, mscheduler.ExposedCleaned.M(exposures))
	}

	redeems, err := s.redeem.CleanDB(ctx, redeemRetention)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("cleaning redeems: %w", err))
	} else {
		stats.Record(ctx, mscheduler.RedeemsCleaned.M(redeems))
	}

	return merr.ErrorOrNil()
}

func (s *Scheduler) updateFakeKeys(ctx context.Context) error {
	now := time.Now().UTC()
	if err := s.fakeKeys.Refresh(ctx, now); err != nil {
		return err
	}
	stats.Record(ctx, mscheduler.FakeKeyDays.M(int64(s.retention/(24*time.Hour))+1))
	return nil
}
