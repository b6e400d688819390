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

// Package fakekeys maintains the pool of synthetic exposure keys that pads
// downloads so response sizes do not reveal the number of real diagnoses.
//
// The pool lives apart from the real store, in memory. Synthetic keys are
// regenerated daily, never swept by retention, and are indistinguishable
// from real keys once unioned into a download.
package fakekeys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"
)

// Config holds the pool parameters.
type Config struct {
	// Amount is the number of synthetic keys per day.
	Amount int

	// RetentionDays is how many whole days back the pool covers. The pool
	// holds RetentionDays+1 days, today included.
	RetentionDays int

	// KeySizeBytes is the decoded key length, matching real uploads.
	KeySizeBytes int

	// BucketDuration is the release bucket width, used to bound the
	// download window the same way the real store does.
	BucketDuration time.Duration

	// Origin and ReportType stamp the synthetic keys exactly like the
	// insert pipeline stamps real ones.
	Origin     string
	ReportType int32
}

// Service implements gaen.DataService over the in-memory pool.
type Service struct {
	cfg Config

	mu   sync.RWMutex
	days map[int64][]*gaen.TemporaryExposureKey // keyed by UTC midnight, unix seconds
}

// New creates an empty pool. Call Refresh before serving.
func New(cfg Config) *Service {
	return &Service{
		cfg:  cfg,
		days: make(map[int64][]*gaen.TemporaryExposureKey),
	}
}

// Refresh brings the pool up to date for now: every covered day has exactly
// the configured amount of keys, days that fell out of the window are
// dropped, days already populated keep their keys so repeated refreshes
// within a day are stable.
func (s *Service) Refresh(ctx context.Context, now time.Time) error {
	logger := logging.FromContext(ctx).Named("fakekeys.Refresh")

	today := timeutils.UTCMidnight(now)
	oldest := today.AddDate(0, 0, -s.cfg.RetentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	for day := range s.days {
		if day < oldest.Unix() {
			delete(s.days, day)
		}
	}

	var generated int
	for day := oldest; !day.After(today); day = day.AddDate(0, 0, 1) {
		if _, ok := s.days[day.Unix()]; ok {
			continue
		}
		keys, err := s.generateDay(day)
		if err != nil {
			return fmt.Errorf("generating fake keys for %v: %w", day, err)
		}
		s.days[day.Unix()] = keys
		generated += len(keys)
	}

	logger.Debugw("refreshed fake key pool", "days", len(s.days), "generated", generated)
	return nil
}

// UpsertExposees is part of gaen.DataService. The pool generates its own
// content, external inserts are rejected.
func (s *Service) UpsertExposees(ctx context.Context, keys []*gaen.TemporaryExposureKey, now time.Time) (int, error) {
	return 0, fmt.Errorf("fake key pool does not accept uploads")
}

// SortedExposedSince returns the synthetic keys of the window
// [since, bucketStart(now)). Unlike the real store there is no expiry
// guard: today's synthetic keys are served all day, which keeps the union
// size stable at every hour.
func (s *Service) SortedExposedSince(ctx context.Context, since, now time.Time, visitedCountries, originCountries []string) ([]*gaen.TemporaryExposureKey, error) {
	upper := timeutils.BucketStart(now, s.cfg.BucketDuration)
	return s.window(since, upper, visitedCountries, originCountries), nil
}

// ExposedForBatchReleaseTime is part of gaen.DataService. The V1 surface
// does not pad downloads, synthetic keys only join the cursor downloads.
func (s *Service) ExposedForBatchReleaseTime(ctx context.Context, releaseTime time.Time) ([]*gaen.TemporaryExposureKey, error) {
	return nil, nil
}

// CleanDB is part of gaen.DataService. Retention is handled by Refresh,
// there is nothing to sweep.
func (s *Service) CleanDB(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func (s *Service) window(since, upper time.Time, visitedCountries, originCountries []string) []*gaen.TemporaryExposureKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*gaen.TemporaryExposureKey
	for day, keys := range s.days {
		at := time.Unix(day, 0).UTC()
		if at.Before(since) || !at.Before(upper) {
			continue
		}
		for _, k := range keys {
			if !matches(k, visitedCountries, originCountries) {
				continue
			}
			out = append(out, k)
		}
	}
	gaen.SortByKeyData(out)
	return out
}

func matches(k *gaen.TemporaryExposureKey, visitedCountries, originCountries []string) bool {
	if len(originCountries) > 0 && !contains(originCountries, k.Origin) {
		return false
	}
	if len(visitedCountries) > 0 {
		var overlap bool
		for _, c := range k.VisitedCountries {
			if contains(visitedCountries, c) {
				overlap = true
				break
			}
		}
		if !overlap {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, c := range list {
		if c == v {
			return true
		}
	}
	return false
}

func (s *Service) generateDay(day time.Time) ([]*gaen.TemporaryExposureKey, error) {
	keys := make([]*gaen.TemporaryExposureKey, 0, s.cfg.Amount)
	for i := 0; i < s.cfg.Amount; i++ {
		raw := make([]byte, s.cfg.KeySizeBytes)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("reading randomness: %w", err)
		}
		keys = append(keys, &gaen.TemporaryExposureKey{
			KeyData:            base64.StdEncoding.EncodeToString(raw),
			RollingStartNumber: gaen.IntervalNumber(day),
			RollingPeriod:      144,
			ReceivedAt:         day,
			Origin:             s.cfg.Origin,
			ReportType:         s.cfg.ReportType,
			VisitedCountries:   []string{s.cfg.Origin},
		})
	}
	return keys, nil
}
