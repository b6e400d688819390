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

package insertmanager

import (
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
)

// Options configure the standard pipelines.
type Options struct {
	KeySizeBytes int
	Retention    time.Duration

	// EFGS stamp applied to every stored key.
	Origin     string
	ReportType int32

	// Legacy client workarounds, disabled by default.
	AndroidLegacyZeroRP bool
	IOSLegacyShortRP    bool
}

// NewExposedPipeline assembles the manager for the exposed surfaces
// (V1, V2 and V2-UMA uploads). Filter order is part of the protocol:
// format and claim violations abort before anything is dropped silently.
func NewExposedPipeline(store gaen.DataService, opts Options) *Manager {
	return NewManager(store, exposedFilters(opts, false), modifiers(opts))
}

// NewNextDayPipeline assembles the manager for the V1 next day surface. It
// additionally drops keys from the future, the single expected key is
// yesterday's.
func NewNextDayPipeline(store gaen.DataService, opts Options) *Manager {
	return NewManager(store, exposedFilters(opts, true), modifiers(opts))
}

func exposedFilters(opts Options, nextDay bool) []KeyFilter {
	filters := []KeyFilter{
		&AssertKeyFormat{KeySizeBytes: opts.KeySizeBytes},
		&EnforceMatchingJWTClaims{},
	}
	if nextDay {
		filters = append(filters, &RemoveKeysFromFuture{})
	}
	return append(filters,
		&EnforceRetentionPeriod{Retention: opts.Retention},
		&RemoveFakeKeys{},
		&EnforceValidRollingPeriod{AllowZero: opts.AndroidLegacyZeroRP},
	)
}

func modifiers(opts Options) []KeyModifier {
	mods := []KeyModifier{}
	if opts.AndroidLegacyZeroRP {
		mods = append(mods, &AndroidZeroRollingPeriod{})
	}
	if opts.IOSLegacyShortRP {
		mods = append(mods, &IOSShortRollingPeriod{})
	}
	return append(mods, &OriginStamp{Origin: opts.Origin, ReportType: opts.ReportType})
}
