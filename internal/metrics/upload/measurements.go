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

// Package upload contains OpenCensus metrics and views for key uploads.
package upload

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats"
)

var (
	uploadMetricsPrefix = metrics.MetricRoot + "upload/"

	BadJSON = stats.Int64(uploadMetricsPrefix+"bad_json",
		"Instances of bad JSON in incoming requests", stats.UnitDimensionless)
	BadVerification = stats.Int64(uploadMetricsPrefix+"bad_verification",
		"Instances of failed JWT verification", stats.UnitDimensionless)
	RejectedUploads = stats.Int64(uploadMetricsPrefix+"rejected",
		"Uploads rejected by the insertion pipeline", stats.UnitDimensionless)
	KeysInserted = stats.Int64(uploadMetricsPrefix+"keys_inserted",
		"Keys inserted into the exposed table", stats.UnitDimensionless)
)
