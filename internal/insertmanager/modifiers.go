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
	"context"
	"strings"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"

	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"
)

// OriginStamp stamps the federation gateway metadata on keys that carry
// none: the configured origin country, report type, and the origin as the
// single visited country. Deployments outside the federation simply omit
// this modifier.
type OriginStamp struct {
	Origin     string
	ReportType int32
}

func (m *OriginStamp) Name() string { return "OriginStamp" }

func (m *OriginStamp) Modify(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) []*gaen.TemporaryExposureKey {
	for _, k := range keys {
		if k.Origin != "" {
			continue
		}
		k.Origin = m.Origin
		k.ReportType = m.ReportType
		if len(k.VisitedCountries) == 0 {
			k.VisitedCountries = []string{m.Origin}
		}
	}
	return keys
}

// AndroidZeroRollingPeriod rewrites the zero rolling period sent by old
// Android builds to a full day.
type AndroidZeroRollingPeriod struct{}

func (m *AndroidZeroRollingPeriod) Name() string { return "AndroidZeroRollingPeriod" }

func (m *AndroidZeroRollingPeriod) Modify(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) []*gaen.TemporaryExposureKey {
	for _, k := range keys {
		if k.RollingPeriod == 0 {
			k.RollingPeriod = v1.MaxRollingPeriod
		}
	}
	return keys
}

// IOSShortRollingPeriod widens the truncated same-day rolling periods sent
// by affected iOS builds to a full day, so the key releases on the normal
// next-day schedule instead of mid-day.
type IOSShortRollingPeriod struct{}

func (m *IOSShortRollingPeriod) Name() string { return "IOSShortRollingPeriod" }

func (m *IOSShortRollingPeriod) Modify(ctx context.Context, upload *Upload, keys []*gaen.TemporaryExposureKey) []*gaen.TemporaryExposureKey {
	if !isIOS(upload.UserAgent) {
		return keys
	}
	for _, k := range keys {
		if k.RollingPeriod > 0 && k.RollingPeriod < v1.MaxRollingPeriod {
			k.RollingPeriod = v1.MaxRollingPeriod
		}
	}
	return keys
}

// User agents look like "org.example.app;1.1.0;iOS;13.3".

func isIOS(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	return strings.Contains(lower, "ios") || strings.Contains(lower, "iphone")
}
