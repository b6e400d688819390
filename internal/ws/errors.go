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

package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/insertmanager"
	mupload "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/upload"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"

	"go.opencensus.io/stats"
)

// errInvalidDelayedKeyDate rejects next day uploads whose key does not match
// the interval the token was issued for.
var errInvalidDelayedKeyDate = errors.New("delayed key date does not match token")

// errDelayedKeyDateOutOfRange rejects V1 uploads announcing a delayed key
// for a day other than yesterday, today or tomorrow.
var errDelayedKeyDateOutOfRange = errors.New("delayed key date out of range")

// respondUploadError translates pipeline and verification errors into the
// protocol status codes. Token problems are deliberately opaque.
func respondUploadError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, verification.ErrAuthFailure),
		errors.Is(err, verification.ErrWrongScope):
		logger.Debugw("upload token rejected", "error", err)
		stats.Record(ctx, mupload.BadVerification.M(1))
		errorResponse(w, http.StatusForbidden, "unauthorized")

	case errors.Is(err, insertmanager.ErrBadKeyFormat),
		errors.Is(err, insertmanager.ErrInvalidRollingPeriod),
		errors.Is(err, insertmanager.ErrClaimIsBeforeOnset),
		errors.Is(err, errInvalidDelayedKeyDate),
		errors.Is(err, errDelayedKeyDateOutOfRange):
		logger.Debugw("upload rejected", "error", err)
		stats.Record(ctx, mupload.RejectedUploads.M(1))
		errorResponse(w, http.StatusBadRequest, err.Error())

	default:
		logger.Errorw("upload failed", "error", err)
		errorResponse(w, http.StatusInternalServerError, "internal error")
	}
}
