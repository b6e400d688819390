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
	"fmt"
	"net/http"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"

	"github.com/gorilla/mux"
)

// Recovery recovers from panics in downstream handlers and responds with an
// internal server error. It should be the outermost middleware so nothing
// escapes it.
func Recovery() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx).Named("middleware.recovery")

			defer func() {
				if p := recover(); p != nil {
					logger.Errorw("http handler panic", "panic", p)
					w.WriteHeader(http.StatusInternalServerError)
					if project.DevMode() {
						fmt.Fprintf(w, "panic: %v", p)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
