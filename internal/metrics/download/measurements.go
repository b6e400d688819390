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

// Package download contains OpenCensus metrics and views for key downloads.
package download

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats"
)

var (
	downloadMetricsPrefix = metrics.MetricRoot + "download/"

	ArchivesServed = stats.Int64(downloadMetricsPrefix+"archives_served",
		"Key archives served", stats.UnitDimensionless)
	KeysServed = stats.Int64(downloadMetricsPrefix+"keys_served",
		"Keys served inside archives", stats.UnitDimensionless)
	EmptyBundles = stats.Int64(downloadMetricsPrefix+"empty_bundles",
		"Download windows that held no keys", stats.UnitDimensionless)
	InvalidTags = stats.Int64(downloadMetricsPrefix+"invalid_tags",
		"Requests carrying an invalid bundle tag or release time", stats.UnitDimensionless)
)
