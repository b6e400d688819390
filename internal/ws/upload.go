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
	"fmt"
	"net/http"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/insertmanager"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/jsonutil"
	mupload "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/upload"
	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	"go.opencensus.io/stats"
)

func errorResponse(w http.ResponseWriter, code int, message string) {
	jsonutil.MarshalResponse(w, code, &v1.GaenResponse{ErrorMessage: message})
}

// handleExposedV1 accepts the V1 key upload and answers with the token that
// authorizes tomorrow's delivery of today's key.
func (s *Server) handleExposedV1() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		now := s.now()

		var request v1.GaenRequest
		code, err := jsonutil.Unmarshal(w, r, &request)
		if err != nil {
			stats.Record(ctx, mupload.BadJSON.M(1))
			errorResponse(w, code, err.Error())
			return
		}

		claims, err := s.verifier.VerifyExposed(r.Header.Get("Authorization"), now)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}

		if err := checkDelayedKeyDate(request.DelayedKeyDate, now); err != nil {
			respondUploadError(ctx, w, err)
			return
		}

		upload := &insertmanager.Upload{Now: now, UserAgent: r.UserAgent(), Claims: claims}
		inserted, err := s.exposedPipeline.InsertIntoDatabase(ctx, fromUploadKeys(request.GaenKeys), upload)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}
		stats.Record(ctx, mupload.KeysInserted.M(int64(inserted)))

		token, err := s.issuer.IssueNextDayToken(request.DelayedKeyDate, claims.Fake, now)
		if err != nil {
			logger.Errorw("issuing next day token", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token))
		jsonutil.MarshalResponse(w, http.StatusOK, &v1.GaenResponse{Response: "OK"})
	}
}

// handleExposedNextDay accepts the single delayed key of the previous day.
// The token is single use: its jti is redeemed before the key is stored.
func (s *Server) handleExposedNextDay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := s.now()

		var request v1.GaenSecondDay
		code, err := jsonutil.Unmarshal(w, r, &request)
		if err != nil {
			stats.Record(ctx, mupload.BadJSON.M(1))
			errorResponse(w, code, err.Error())
			return
		}

		claims, err := s.verifier.VerifyNextDay(r.Header.Get("Authorization"), now)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}

		fresh, err := s.redeem.UpsertRedeemUUID(ctx, claims.ID, now)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}
		if !fresh {
			stats.Record(ctx, mupload.BadVerification.M(1))
			errorResponse(w, http.StatusForbidden, "token already redeemed")
			return
		}

		if request.DelayedKey.RollingStartNumber != claims.DelayedKeyDate {
			respondUploadError(ctx, w, errInvalidDelayedKeyDate)
			return
		}

		upload := &insertmanager.Upload{Now: now, UserAgent: r.UserAgent(), Claims: claims}
		inserted, err := s.nextDayPipeline.InsertIntoDatabase(ctx, fromUploadKeys([]v1.GaenKey{request.DelayedKey}), upload)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}
		stats.Record(ctx, mupload.KeysInserted.M(int64(inserted)))

		jsonutil.MarshalResponse(w, http.StatusOK, &v1.GaenResponse{Response: "OK"})
	}
}

// handleExposedV2 accepts the V2 and V2-UMA uploads. Unlike V1 there is no
// follow-up delivery, the same-day key arrives with a short rolling period.
func (s *Server) handleExposedV2() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := s.now()

		var request v1.GaenV2UploadKeysRequest
		code, err := jsonutil.Unmarshal(w, r, &request)
		if err != nil {
			stats.Record(ctx, mupload.BadJSON.M(1))
			errorResponse(w, code, err.Error())
			return
		}

		claims, err := s.verifier.VerifyExposed(r.Header.Get("Authorization"), now)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}

		upload := &insertmanager.Upload{Now: now, UserAgent: r.UserAgent(), Claims: claims}
		inserted, err := s.exposedPipeline.InsertIntoDatabase(ctx, fromUploadKeys(request.GaenKeys), upload)
		if err != nil {
			respondUploadError(ctx, w, err)
			return
		}
		stats.Record(ctx, mupload.KeysInserted.M(int64(inserted)))

		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "OK")
	}
}

// checkDelayedKeyDate bounds the day the client promises its delayed key
// for. Clock skew across the midnight boundary is expected, anything beyond
// a day in either direction is not.
func checkDelayedKeyDate(delayedKeyDate int32, now time.Time) error {
	min := gaen.IntervalNumber(timeutils.UTCMidnight(now.AddDate(0, 0, -1)))
	max := gaen.IntervalNumber(timeutils.UTCMidnight(now.AddDate(0, 0, 1)))
	if delayedKeyDate < min || delayedKeyDate > max {
		return errDelayedKeyDateOutOfRange
	}
	return nil
}

func fromUploadKeys(in []v1.GaenKey) []*gaen.TemporaryExposureKey {
	out := make([]*gaen.TemporaryExposureKey, 0, len(in))
	for i := range in {
		out = append(out, gaen.FromUpload(&in[i]))
	}
	return out
}
