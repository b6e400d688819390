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

package download

import (
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics"

	"go.opencensus.io/stats/view"
)

var Views = []*view.View{
	{
		Name:        metrics.MetricRoot + "download_archives_served_count",
		Description: "Total count of key archives served",
		Measure:     ArchivesServed,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "download_keys_served_count",
		Description: "Total count of keys served inside archives",
		Measure:     KeysServed,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "download_empty_bundles_count",
		Description: "Total count of download windows that held no keys",
		Measure:     EmptyBundles,
		Aggregation: view.Sum(),
	},
	{
		Name:        metrics.MetricRoot + "download_invalid_tags_count",
		Description: "Total count of invalid bundle tags or release times",
		Measure:     InvalidTags,
		Aggregation: view.Sum(),
	},
}
