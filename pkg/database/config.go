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

package database

import (
	"net/url"
	"strconv"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"
)

// Config holds the environment based configuration for database connections.
type Config struct {
	Name               string `env:"DB_NAME"`
	User               string `env:"DB_USER"`
	Host               string `env:"DB_HOST, default=localhost"`
	Port               string `env:"DB_PORT, default=5432"`
	SSLMode            string `env:"DB_SSLMODE, default=require"`
	ConnectionTimeout  int    `env:"DB_CONNECT_TIMEOUT"`
	Password           string `env:"DB_PASSWORD"`
	SSLCertPath        string `env:"DB_SSLCERT"`
	SSLKeyPath         string `env:"DB_SSLKEY"`
	SSLRootCertPath    string `env:"DB_SSLROOTCERT"`
	PoolMinConnections string `env:"DB_POOL_MIN_CONNS"`
	PoolMaxConnections string `env:"DB_POOL_MAX_CONNS"`

	// Secrets is the secret manager configuration used to resolve secret://
	// references in the values above (DB_PASSWORD et al).
	Secrets secrets.Config
}

// DatabaseConfig returns the configuration itself, satisfying the setup
// provider interface.
func (c *Config) DatabaseConfig() *Config {
	return c
}

// SecretManagerConfig returns the secret manager configuration.
func (c *Config) SecretManagerConfig() *secrets.Config {
	return &c.Secrets
}

// ConnectionURL builds a postgres connection URI from the configuration. It
// is suitable both for pgxpool and for golang-migrate.
func (c *Config) ConnectionURL() string {
	if c == nil {
		return ""
	}

	host := c.Host
	if v := c.Port; v != "" {
		host = host + ":" + v
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   c.Name,
	}

	if c.User != "" || c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := u.Query()
	if v := c.ConnectionTimeout; v > 0 {
		q.Add("connect_timeout", strconv.Itoa(v))
	}
	if v := c.SSLCertPath; v != "" {
		q.Add("sslcert", v)
	}
	if v := c.SSLKeyPath; v != "" {
		q.Add("sslkey", v)
	}
	if v := c.SSLMode; v != "" {
		q.Add("sslmode", v)
	}
	if v := c.SSLRootCertPath; v != "" {
		q.Add("sslrootcert", v)
	}
	if v := c.PoolMinConnections; v != "" {
		q.Add("pool_min_conns", v)
	}
	if v := c.PoolMaxConnections; v != "" {
		q.Add("pool_max_conns", v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
