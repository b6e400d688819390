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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	mdownload "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/download"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/timeutils"

	"github.com/gorilla/mux"
	"go.opencensus.io/stats"
)

const zipContentType = "application/zip"

var errInvalidBundleTag = errors.New("invalid lastKeyBundleTag")

// handleDownloadV1 serves the single release bucket that closed at the
// requested batch release time as a signed export zip.
func (s *Server) handleDownloadV1() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		now := s.now()
		bucket := s.config.ReleaseBucketDuration

		ms, err := strconv.ParseInt(mux.Vars(r)["batchReleaseTime"], 10, 64)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid batch release time")
			return
		}
		releaseTime := time.UnixMilli(ms).UTC()

		// Only closed buckets inside the retention window are servable.
		if !timeutils.IsBucketAligned(releaseTime, bucket) ||
			releaseTime.After(now) ||
			releaseTime.Before(now.Add(-s.config.Retention())) {
			errorResponse(w, http.StatusBadRequest, "invalid batch release time")
			return
		}

		keys, err := s.store.ExposedForBatchReleaseTime(ctx, releaseTime)
		if err != nil {
			logger.Errorw("loading batch", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(s.config.ExposedListCacheControl.Seconds())))
		if len(keys) == 0 {
			stats.Record(ctx, mdownload.EmptyBundles.M(1))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		payload, err := s.assembler.MarshalExportFile(keys, releaseTime.Add(-bucket), releaseTime)
		if err != nil {
			logger.Errorw("assembling export", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}
		stats.Record(ctx, mdownload.ArchivesServed.M(1), mdownload.KeysServed.M(int64(len(keys))))

		w.Header().Set("Content-Type", zipContentType)
		w.Write(payload)
	}
}

// handleDownloadV2 serves every bucket since the client's bundle tag as one
// signed export zip.
func (s *Server) handleDownloadV2() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		now := s.now()

		tag, err := s.parseBundleTag(r, now)
		if err != nil {
			stats.Record(ctx, mdownload.InvalidTags.M(1))
			errorResponse(w, http.StatusNotFound, "not found")
			return
		}
		s.setBundleHeaders(w, now)

		keys, err := s.store.SortedExposedSince(ctx, tag, now, nil, nil)
		if err != nil {
			logger.Errorw("loading keys", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(keys) == 0 {
			stats.Record(ctx, mdownload.EmptyBundles.M(1))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		payload, err := s.assembler.MarshalExportFile(keys, tag, timeutils.BucketStart(now, s.config.ReleaseBucketDuration))
		if err != nil {
			logger.Errorw("assembling export", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}
		stats.Record(ctx, mdownload.ArchivesServed.M(1), mdownload.KeysServed.M(int64(len(keys))))

		w.Header().Set("Content-Type", zipContentType)
		w.Write(payload)
	}
}

// handleDownloadUMA serves the same window as V2, filtered by country and
// packed as a signed Cuckoo filter instead of key protos.
func (s *Server) handleDownloadUMA() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)
		now := s.now()

		tag, err := s.parseBundleTag(r, now)
		if err != nil {
			stats.Record(ctx, mdownload.InvalidTags.M(1))
			errorResponse(w, http.StatusNotFound, "not found")
			return
		}
		s.setBundleHeaders(w, now)

		visited := queryList(r, "visitedCountries")
		origins := queryList(r, "originCountries")

		keys, err := s.store.SortedExposedSince(ctx, tag, now, visited, origins)
		if err != nil {
			logger.Errorw("loading keys", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}

		if s.fakeKeys != nil {
			fake, err := s.fakeKeys.SortedExposedSince(ctx, tag, now, visited, origins)
			if err != nil {
				logger.Errorw("loading fake keys", "error", err)
				errorResponse(w, http.StatusInternalServerError, "internal error")
				return
			}
			keys = append(keys, fake...)
			gaen.SortByKeyData(keys)
		}

		if len(keys) == 0 {
			stats.Record(ctx, mdownload.EmptyBundles.M(1))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		payload, err := s.assembler.MarshalFilterFile(keys)
		if err != nil {
			logger.Errorw("assembling filter", "error", err)
			errorResponse(w, http.StatusInternalServerError, "internal error")
			return
		}
		stats.Record(ctx, mdownload.ArchivesServed.M(1), mdownload.KeysServed.M(int64(len(keys))))

		w.Header().Set("Content-Type", zipContentType)
		w.Write(payload)
	}
}

// parseBundleTag validates the lastKeyBundleTag query parameter. Missing or
// too-old tags are clamped to the oldest bucket still under retention,
// anything off the bucket grid or in the future is an error. The current
// bucket start is a legal tag and yields an empty window.
func (s *Server) parseBundleTag(r *http.Request, now time.Time) (time.Time, error) {
	bucket := s.config.ReleaseBucketDuration
	minTag := timeutils.NextBucket(now.Add(-s.config.Retention()), bucket)

	raw := r.URL.Query().Get("lastKeyBundleTag")
	if raw == "" {
		return minTag, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, errInvalidBundleTag
	}
	tag := time.UnixMilli(ms).UTC()

	if !timeutils.IsBucketAligned(tag, bucket) || tag.After(timeutils.BucketStart(now, bucket)) {
		return time.Time{}, errInvalidBundleTag
	}
	if tag.Before(minTag) {
		tag = minTag
	}
	return tag, nil
}

// setBundleHeaders stamps the follow-up tag and its expiry on V2 responses,
// empty and not.
func (s *Server) setBundleHeaders(w http.ResponseWriter, now time.Time) {
	bucket := s.config.ReleaseBucketDuration
	w.Header().Set("x-key-bundle-tag", strconv.FormatInt(timeutils.BucketStart(now, bucket).UnixMilli(), 10))
	w.Header().Set("Expires", timeutils.NextBucket(now, bucket).UTC().Format(http.TimeFormat))
}

// queryList flattens a repeatable, comma separable query parameter.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
