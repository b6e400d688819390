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

// This binary applies the database schema migrations.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/interrupt"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/setup"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

var (
	_ setup.DatabaseConfigProvider      = (*config)(nil)
	_ setup.SecretManagerConfigProvider = (*config)(nil)
)

// config resolves the database settings, including secret:// references,
// through the same setup path the services use.
type config struct {
	Database      database.Config
	SecretManager secrets.Config

	Migrations string `env:"MIGRATIONS_PATH, default=migrations/"`
}

func (c *config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *config) SecretManagerConfig() *secrets.Config {
	return &c.SecretManager
}

func main() {
	ctx, done := interrupt.Context()
	defer done()

	logger := logging.NewLoggerFromEnv()
	ctx = logging.WithLogger(ctx, logger)

	err := realMain(ctx)
	done()

	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("migrations complete")
}

func realMain(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	var cfg config
	env, err := setup.Setup(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	m, err := migrate.New("file://"+cfg.Migrations, cfg.Database.ConnectionURL())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	m.Log = &migrateLogger{logger}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return fmt.Errorf("closing source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing database: %w", dbErr)
	}
	return nil
}

type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (m *migrateLogger) Printf(format string, v ...interface{}) {
	m.logger.Infof(format, v...)
}

func (m *migrateLogger) Verbose() bool {
	return false
}
