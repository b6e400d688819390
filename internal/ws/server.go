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

// Package ws is the HTTP surface of the exposure notification service: the
// V1, V2 and V2-UMA upload and download protocols.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/export"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/fakekeys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	gaendb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/insertmanager"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/middleware"
	redeemdb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/redeem/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/serverenv"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"

	"github.com/gorilla/mux"
	"github.com/mikehelmick/go-chaff"
)

// Server hosts the protocol end points.
type Server struct {
	config  *Config
	env     *serverenv.ServerEnv
	tracker *chaff.Tracker

	store     gaen.DataService
	fakeKeys  *fakekeys.Service
	redeem    *redeemdb.RedeemDB
	verifier  *verification.Verifier
	issuer    *verification.Issuer
	assembler *export.Assembler

	exposedPipeline *insertmanager.Manager
	nextDayPipeline *insertmanager.Manager

	hashFilter *keyvault.KeyPair

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewServer makes a Server from the provided environment.
func NewServer(config *Config, env *serverenv.ServerEnv) (*Server, error) {
	if env.Database() == nil {
		return nil, fmt.Errorf("missing database in server environment")
	}
	if env.KeyVault() == nil {
		return nil, fmt.Errorf("missing key vault in server environment")
	}

	gaenPair, err := env.KeyVault().Get(keyvault.PairGAEN)
	if err != nil {
		return nil, fmt.Errorf("resolving export signing key: %w", err)
	}
	nextDayPair, err := env.KeyVault().Get(keyvault.PairNextDayJWT)
	if err != nil {
		return nil, fmt.Errorf("resolving next day token key: %w", err)
	}
	hashFilterPair, err := env.KeyVault().Get(keyvault.PairHashFilter)
	if err != nil {
		return nil, fmt.Errorf("resolving response signing key: %w", err)
	}

	verifier, err := verification.New(config.UploadJWTPublicKey, nextDayPair.Public(), config.TimeSkew)
	if err != nil {
		return nil, fmt.Errorf("configuring upload token verifier: %w", err)
	}

	store := gaendb.New(env.Database(), config.ReleaseBucketDuration)

	opts := insertmanager.Options{
		KeySizeBytes:        config.KeySizeBytes,
		Retention:           config.Retention(),
		Origin:              config.CountryOrigin,
		ReportType:          config.ReportType,
		AndroidLegacyZeroRP: config.AndroidLegacyZeroRP,
		IOSLegacyShortRP:    config.IOSLegacyShortRP,
	}

	var fakePool *fakekeys.Service
	if config.RandomKeysEnabled {
		fakePool = fakekeys.New(fakekeys.Config{
			Amount:         config.RandomKeyAmount,
			RetentionDays:  config.RetentionDays,
			KeySizeBytes:   config.KeySizeBytes,
			BucketDuration: config.ReleaseBucketDuration,
			Origin:         config.CountryOrigin,
			ReportType:     config.ReportType,
		})
	}

	return &Server{
		config:          config,
		env:             env,
		tracker:         chaff.New(),
		store:           store,
		fakeKeys:        fakePool,
		redeem:          redeemdb.New(env.Database()),
		verifier:        verifier,
		issuer:          verification.NewIssuer(nextDayPair.Signer(), "dp3t-ws"),
		assembler:       export.NewAssembler(&config.Export, gaenPair.Signer()),
		exposedPipeline: insertmanager.NewExposedPipeline(store, opts),
		nextDayPipeline: insertmanager.NewNextDayPipeline(store, opts),
		hashFilter:      hashFilterPair,
		now:             time.Now,
	}, nil
}

// FakeKeys exposes the synthetic key pool so the scheduler can refresh it.
// Nil when RANDOM_KEYS_ENABLED is off.
func (s *Server) FakeKeys() *fakekeys.Service {
	return s.fakeKeys
}

// Routes defines and returns the routes for this server.
func (s *Server) Routes(ctx context.Context) *mux.Router {
	logger := logging.FromContext(ctx)

	r := mux.NewRouter()
	r.Use(middleware.Recovery())
	r.Use(middleware.PopulateRequestID())
	r.Use(middleware.PopulateObservability())
	r.Use(middleware.PopulateLogger(logger))
	r.Use(middleware.ProcessMaintenance(s.config))
	r.Use(s.signResponses)

	r.HandleFunc("/v1/gaen", s.handleHello("Hello from DP3T WS")).Methods(http.MethodGet)
	r.HandleFunc("/v2/gaen", s.handleHello("Hello from DP3T WS GAEN V2")).Methods(http.MethodGet)
	r.HandleFunc("/v2UMA/gaen", s.handleHello("Hello from DP3T WS GAEN V2-UMA")).Methods(http.MethodGet)

	r.Handle("/v1/gaen/exposed", s.upload(s.handleExposedV1())).Methods(http.MethodPost)
	r.Handle("/v1/gaen/exposednextday", s.upload(s.handleExposedNextDay())).Methods(http.MethodPost)
	r.Handle("/v2/gaen/exposed", s.upload(s.handleExposedV2())).Methods(http.MethodPost)
	r.Handle("/v2UMA/gaen/exposed", s.upload(s.handleExposedV2())).Methods(http.MethodPost)

	r.HandleFunc("/v1/gaen/exposed/{batchReleaseTime:[0-9]+}", s.handleDownloadV1()).Methods(http.MethodGet)
	r.HandleFunc("/v2/gaen/exposed", s.handleDownloadV2()).Methods(http.MethodGet)
	r.HandleFunc("/v2UMA/gaen/exposed", s.handleDownloadUMA()).Methods(http.MethodGet)

	return r
}

// upload wraps an upload handler with chaff tracking and the constant
// response time floor shared by every upload outcome.
func (s *Server) upload(handler http.Handler) http.Handler {
	tracked := s.tracker.HandleTrack(chaff.HeaderDetector("X-Chaff"), handler)
	return middleware.WithMinimumLatency(s.config.RequestTime)(tracked)
}

func (s *Server) handleHello(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-HELLO", "dp3t")
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, message)
	}
}
