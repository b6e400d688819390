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

package upload

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats/view"
)

var Views = []*view.View{
	{
		Name:        metrics.MetricRoot + "upload_bad_json_count",
		Description: "Total count of bad JSON in incoming requests",
		Measure:     BadJSON,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "upload_bad_verification_count",
		Description: "Total count of failed JWT verifications",
		Measure:     BadVerification,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "upload_rejected_count",
		Description: "Total count of uploads rejected by the insertion pipeline",
		Measure:     RejectedUploads,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "upload_keys_inserted_count",
		Description: "Total count of keys inserted into the exposed table",
		Measure:     KeysInserted,
		Aggregation: view.Sum(),
	},
}
