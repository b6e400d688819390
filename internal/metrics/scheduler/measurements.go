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

// Package scheduler contains OpenCensus metrics and views for the periodic
// background jobs.
package scheduler

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats"
)

var (
	schedulerMetricsPrefix = metrics.MetricRoot + "scheduler/"

	ExposedCleaned = stats.Int64(schedulerMetricsPrefix+"exposed_cleaned",
		"Expired keys removed by the cleanup job", stats.UnitDimensionless)
	RedeemsCleaned = stats.Int64(schedulerMetricsPrefix+"redeems_cleaned",
		"Expired redeemed token ids removed by the cleanup job", stats.UnitDimensionless)
	FakeKeyDays = stats.Int64(schedulerMetricsPrefix+"fake_key_days",
		"Days of fake keys held after a refresh", stats.UnitDimensionless)
	LockContention = stats.Int64(schedulerMetricsPrefix+"lock_contention",
		"Job runs skipped because another replica held the lease", stats.UnitDimensionless)
)
