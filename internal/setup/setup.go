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

// Package setup provides common initialization logic for the services.
package setup

import (
	"context"
	"fmt"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/serverenv"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/keys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/observability"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"

	"github.com/sethvargo/go-envconfig"
)

// DatabaseConfigProvider provides the configuration for connecting to a
// database.
type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

// SecretManagerConfigProvider signals that the config knows how to configure
// a secret manager.
type SecretManagerConfigProvider interface {
	SecretManagerConfig() *secrets.Config
}

// KeyManagerConfigProvider signals that a key manager should be installed.
type KeyManagerConfigProvider interface {
	KeyManagerConfig() *keys.Config
}

// ObservabilityExporterConfigProvider signals that the config knows how to
// configure an observability exporter.
type ObservabilityExporterConfigProvider interface {
	ObservabilityExporterConfig() *observability.Config
}

// KeyVaultConfigProvider signals that the config carries named signing key
// material to resolve at startup.
type KeyVaultConfigProvider interface {
	KeyVaultConfig() *keyvault.Config
}

// Setup runs common initialization code for all servers. See SetupWith.
func Setup(ctx context.Context, config interface{}) (*serverenv.ServerEnv, error) {
	return SetupWith(ctx, config, envconfig.OsLookuper())
}

// SetupWith processes the given configuration using envconfig with the given
// lookuper. It is separate from Setup for testing.
func SetupWith(ctx context.Context, config interface{}, l envconfig.Lookuper) (*serverenv.ServerEnv, error) {
	logger := logging.FromContext(ctx)

	var serverEnvOpts []serverenv.Option

	// First pass with no mutators, so the secret manager config itself
	// becomes available.
	if err := envconfig.ProcessWith(ctx, config, l); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var sm secrets.SecretManager
	var mutatorFuncs []envconfig.MutatorFunc
	if provider, ok := config.(SecretManagerConfigProvider); ok {
		logger.Info("configuring secret manager")

		smConfig := provider.SecretManagerConfig()

		var err error
		sm, err = secrets.SecretManagerFor(ctx, smConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to secret manager: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithSecretManager(sm))
		mutatorFuncs = append(mutatorFuncs, secrets.Resolver(sm, smConfig))
	}

	// Second pass resolves secret:// references through the secret manager.
	if err := envconfig.ProcessWith(ctx, config, l, mutatorFuncs...); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var km keys.KeyManager
	if provider, ok := config.(KeyManagerConfigProvider); ok {
		logger.Info("configuring key manager")

		var err error
		km, err = keys.KeyManagerFor(ctx, provider.KeyManagerConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to key manager: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithKeyManager(km))
	}

	if provider, ok := config.(KeyVaultConfigProvider); ok {
		logger.Info("configuring key vault")

		vault, err := keyvault.New(ctx, provider.KeyVaultConfig(), km)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve signing keys: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithKeyVault(vault))
	}

	if provider, ok := config.(ObservabilityExporterConfigProvider); ok {
		logger.Info("configuring observability exporter")

		oe, err := observability.NewFromEnv(provider.ObservabilityExporterConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to create observability provider: %w", err)
		}
		if err := oe.StartExporter(); err != nil {
			return nil, fmt.Errorf("failed to start observability: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithObservabilityExporter(oe))
	}

	if provider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("configuring database")

		db, err := database.NewFromEnv(ctx, provider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithDatabase(db))
	}

	return serverenv.New(ctx, serverEnvOpts...), nil
}
