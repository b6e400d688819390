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

package export

// Config describes the signature metadata stamped on every export file.
type Config struct {
	// Region is the GAEN region of this deployment.
	Region string `env:"GAEN_REGION, default=es"`

	// Algorithm is the OID advertised in SignatureInfo. The default is
	// ecdsa-with-SHA256, http://oid-info.com/get/1.2.840.10045.4.3.2.
	Algorithm string `env:"GAEN_ALGORITHM, default=1.2.840.10045.4.3.2"`

	// KeyVersion and KeyIdentifier let the OS pick the matching public key.
	KeyVersion    string `env:"KEY_VERSION, default=v1"`
	KeyIdentifier string `env:"KEY_IDENTIFIER, default=214"`

	// App identifiers verified by the client OS.
	BundleID    string `env:"BUNDLE_ID"`
	PackageName string `env:"PACKAGE_NAME"`
}
