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

// Package serverenv defines common parameters for the server environment.
package serverenv

import (
	"context"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/keys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/observability"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"
)

// ServerEnv represents latent environment configuration for servers in this
// application.
type ServerEnv struct {
	database              *database.DB
	keyManager            keys.KeyManager
	secretManager         secrets.SecretManager
	observabilityExporter observability.Exporter
	keyVault              *keyvault.Vault
}

// Option defines function types to modify the ServerEnv on creation.
type Option func(*ServerEnv) *ServerEnv

// New creates a new ServerEnv with the requested options.
func New(ctx context.Context, opts ...Option) *ServerEnv {
	env := &ServerEnv{}

	for _, f := range opts {
		env = f(env)
	}

	return env
}

// WithDatabase attaches a database to the environment.
func WithDatabase(db *database.DB) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.database = db
		return s
	}
}

// WithKeyManager attaches a key manager to the environment.
func WithKeyManager(km keys.KeyManager) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.keyManager = km
		return s
	}
}

// WithSecretManager attaches a secret manager to the environment.
func WithSecretManager(sm secrets.SecretManager) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.secretManager = sm
		return s
	}
}

// WithObservabilityExporter attaches an observability exporter to the
// environment.
func WithObservabilityExporter(oe observability.Exporter) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.observabilityExporter = oe
		return s
	}
}

// WithKeyVault attaches the resolved signing key pairs to the environment.
func WithKeyVault(v *keyvault.Vault) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.keyVault = v
		return s
	}
}

func (s *ServerEnv) Database() *database.DB {
	return s.database
}

func (s *ServerEnv) KeyManager() keys.KeyManager {
	return s.keyManager
}

func (s *ServerEnv) SecretManager() secrets.SecretManager {
	return s.secretManager
}

func (s *ServerEnv) ObservabilityExporter() observability.Exporter {
	return s.observabilityExporter
}

func (s *ServerEnv) KeyVault() *keyvault.Vault {
	return s.keyVault
}

// Close shuts down the stateful resources in the environment.
func (s *ServerEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		s.database.Close(ctx)
	}

	if s.observabilityExporter != nil {
		if err := s.observabilityExporter.Close(); err != nil {
			return err
		}
	}

	return nil
}
