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
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/export"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/setup"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/keys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/observability"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"
)

// Compile-time check to assert this config matches requirements.
var (
	_ setup.DatabaseConfigProvider              = (*Config)(nil)
	_ setup.SecretManagerConfigProvider         = (*Config)(nil)
	_ setup.KeyManagerConfigProvider            = (*Config)(nil)
	_ setup.ObservabilityExporterConfigProvider = (*Config)(nil)
	_ setup.KeyVaultConfigProvider              = (*Config)(nil)
)

// Config represents the environment based configuration for the exposure
// notification web service.
type Config struct {
	Database      database.Config
	SecretManager secrets.Config
	KeyManager    keys.Config
	Observability observability.Config
	KeyVault      keyvault.Config
	Export        export.Config

	Port string `env:"PORT, default=8080"`

	// ReleaseBucketDuration is the width of a release bucket. Keys become
	// visible to downloads only when the bucket they were received in has
	// closed.
	ReleaseBucketDuration time.Duration `env:"RELEASE_BUCKET_DURATION, default=7200000ms"`

	// RequestTime is the normalized duration of every upload request,
	// success or failure, so response timing does not leak whether an
	// upload was real.
	RequestTime time.Duration `env:"REQUEST_TIME, default=1500ms"`

	// ExposedListCacheControl is the max-age advertised on V1 downloads.
	ExposedListCacheControl time.Duration `env:"EXPOSED_LIST_CACHE_CONTROL, default=300000ms"`

	// RetentionDays bounds both uploads and downloads to the epidemiologically
	// relevant window.
	RetentionDays int `env:"RETENTION_DAYS, default=14"`

	// KeySizeBytes is the decoded length of an accepted exposure key.
	KeySizeBytes int `env:"GAEN_KEY_SIZE_BYTES, default=16"`

	// RandomKeysEnabled unions a deterministic pool of synthetic keys into
	// the V2-UMA downloads so small result sets do not identify uploaders.
	RandomKeysEnabled bool   `env:"RANDOM_KEYS_ENABLED, default=false"`
	RandomKeyAmount   int    `env:"RANDOM_KEY_AMOUNT, default=10"`
	CountryOrigin     string `env:"EFGS_COUNTRY_ORIGIN, default=ES"`
	ReportType        int32  `env:"EFGS_REPORT_TYPE, default=1"`

	// TimeSkew is the clock tolerance applied to upload JWT validation.
	TimeSkew time.Duration `env:"TIME_SKEW, default=2h"`

	// UploadJWTPublicKey verifies the health authority tokens presented on
	// uploads. PEM or JWK, secret:// capable.
	UploadJWTPublicKey string `env:"UPLOAD_JWT_PUBLIC_KEY"`

	// Workarounds for known-broken GAEN client builds.
	AndroidLegacyZeroRP bool `env:"ANDROID_LEGACY_ZERO_RP_ENABLED, default=false"`
	IOSLegacyShortRP    bool `env:"IOS_LEGACY_SHORT_RP_ENABLED, default=false"`

	Maintenance bool `env:"MAINTENANCE_MODE, default=false"`
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) SecretManagerConfig() *secrets.Config {
	return &c.SecretManager
}

func (c *Config) KeyManagerConfig() *keys.Config {
	return &c.KeyManager
}

func (c *Config) ObservabilityExporterConfig() *observability.Config {
	return &c.Observability
}

func (c *Config) KeyVaultConfig() *keyvault.Config {
	return &c.KeyVault
}

func (c *Config) MaintenanceMode() bool {
	return c.Maintenance
}

// Retention is the configured retention as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
