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

package scheduler

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats/view"
)

var Views = []*view.View{
	{
		Name:        metrics.MetricRoot + "scheduler_exposed_cleaned_count",
		Description: "Total count of expired keys removed by the cleanup job",
		Measure:     ExposedCleaned,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "scheduler_redeems_cleaned_count",
		Description: "Total count of expired redeemed token ids removed by the cleanup job",
		Measure:     RedeemsCleaned,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "scheduler_fake_key_days",
		Description: "Days of fake keys held after a refresh",
		Measure:     FakeKeyDays,
		Aggregation: view.LastValue(),
	},
	{
		Name:        metrics.MetricRoot + "scheduler_lock_contention_count",
		Description: "Total count of job runs skipped due to lease contention",
		Measure:     LockContention,
		Aggregation: view.Sum(),
	},
}
