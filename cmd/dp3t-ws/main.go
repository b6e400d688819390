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

// This binary hosts the exposure notification web service: the V1, V2 and
// V2-UMA upload and download protocols plus the background jobs.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/buildinfo"
	gaendb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/interrupt"
	redeemdb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/redeem/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/scheduler"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/setup"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/ws"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/observability/dp3t"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/server"
)

func main() {
	ctx, done := interrupt.Context()
	defer done()

	logger := logging.NewLoggerFromEnv().
		With("build_id", buildinfo.Server.ID()).
		With("build_tag", buildinfo.Server.Tag())
	ctx = logging.WithLogger(ctx, logger)

	err := realMain(ctx)
	done()

	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("successful shutdown")
}

func realMain(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	var config ws.Config
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	if err := dp3t.RegisterViews(); err != nil {
		return fmt.Errorf("registering metric views: %w", err)
	}
	if err := server.ServeMetricsIfPrometheus(ctx); err != nil {
		return fmt.Errorf("serving metrics: %w", err)
	}

	wsServer, err := ws.NewServer(&config, env)
	if err != nil {
		return fmt.Errorf("ws.NewServer: %w", err)
	}

	sched := scheduler.New(
		env.Database(),
		gaendb.New(env.Database(), config.ReleaseBucketDuration),
		redeemdb.New(env.Database()),
		wsServer.FakeKeys(),
		config.Retention(),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	// The health check bypasses the protocol middleware so probes keep
	// working in maintenance mode.
	root := http.NewServeMux()
	root.Handle("/health", server.HandleHealthz(env.Database()))
	root.Handle("/", wsServer.Routes(ctx))

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	logger.Infow("server listening", "port", config.Port)
	return srv.ServeHTTPHandler(ctx, root)
}
