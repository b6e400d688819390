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

// Package insertmanager runs uploaded keys through an ordered pipeline of
// filters and modifiers before they reach the store.
//
// Filters either drop keys silently (per key) or raise, aborting the whole
// upload with a typed error. Modifiers rewrite keys and never fail. The
// database write is all or nothing: a raise anywhere leaves the store
// untouched.
package insertmanager

import (
	"context"
	"errors"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
)

var (
	// ErrBadKeyFormat is raised when any key fails the format check.
	ErrBadKeyFormat = errors.New("invalid key format")

	// ErrInvalidRollingPeriod is raised on rolling periods outside [1,144].
	ErrInvalidRollingPeriod = errors.New("invalid rolling period")

	// ErrClaimIsBeforeOnset is raised when a key predates the token's onset.
	ErrClaimIsBeforeOnset = errors.New("key date precedes onset")
)

// Upload carries the per-request context the pipeline stages consume.
type Upload struct {
	Now       time.Time
	UserAgent string

	// Claims are the verified token claims, nil when the pipeline runs
	// without authentication (tests).
	Claims *verification.Claims
}

// KeyFilter narrows the surviving key sequence. Returning an error aborts
// the upload.
type KeyFilter interface {
	Name() string
	Filter(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) ([]*gaen.TemporaryExposureKey, error)
}

// KeyModifier rewrites keys in place or derives new ones. Modifiers never
// fail; a key a modifier cannot handle passes through unchanged.
type KeyModifier interface {
	Name() string
	Modify(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) []*gaen.TemporaryExposureKey
}

// Manager is a configured pipeline in front of a key store.
type Manager struct {
	store     gaen.DataService
	filters   []KeyFilter
	modifiers []KeyModifier
}

// NewManager builds a pipeline. Filter and modifier order is meaningful and
// preserved.
func NewManager(store gaen.DataService, filters []KeyFilter, modifiers []KeyModifier) *Manager {
	return &Manager{
		store:     store,
		filters:   filters,
		modifiers: modifiers,
	}
}

// InsertIntoDatabase runs the pipeline and stores the survivors. Returns
// the number of keys actually inserted.
func (m *Manager) InsertIntoDatabase(ctx context.Context, keys []*gaen.TemporaryExposureKey, upload *Upload) (int, error) {
	logger := logging.FromContext(ctx).Named("insertmanager")

	var err error
	for _, f := range m.filters {
		before := len(keys)
		keys, err = f.Filter(ctx, upload, keys)
		if err != nil {
			return 0, err
		}
		if dropped := before - len(keys); dropped > 0 {
			logger.Debugw("filter dropped keys", "filter", f.Name(), "dropped", dropped)
		}
	}

	for _, mod := range m.modifiers {
		keys = mod.Modify(ctx, upload, keys)
	}

	if len(keys) == 0 {
		return 0, nil
	}
	return m.store.UpsertExposees(ctx, keys, upload.Now)
}
