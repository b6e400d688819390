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

package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opencensus.io/plugin/ochttp"
)

// PopulateObservability wraps the handler with the OpenCensus HTTP plugin so
// server latency and response views get recorded per route.
func PopulateObservability() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return &ochttp.Handler{Handler: next}
	}
}
