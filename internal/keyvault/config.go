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

package keyvault

// Config holds the key material for the named pairs. Values may be inline
// PEM, JWK, or base64 DER; values prefixed with secret:// are resolved
// through the secret manager before they reach this struct, and values
// prefixed with kms:// are resolved through the configured key manager.
type Config struct {
	GAENPrivateKey       string `env:"GAEN_PRIVATE_KEY"`
	GAENPublicKey        string `env:"GAEN_PUBLIC_KEY"`
	NextDayJWTPrivateKey string `env:"NEXT_DAY_JWT_PRIVATE_KEY"`
	NextDayJWTPublicKey  string `env:"NEXT_DAY_JWT_PUBLIC_KEY"`
	HashFilterPrivateKey string `env:"HASH_FILTER_PRIVATE_KEY"`
	HashFilterPublicKey  string `env:"HASH_FILTER_PUBLIC_KEY"`
}
