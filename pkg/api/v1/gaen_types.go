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

// Package v1 holds the upload wire types shared between the service and the
// mobile clients. Field names are an external contract.
package v1

import "time"

// The following constants are generally useful in implementations of this API
// and for clients as well.
const (
	// KeyLength is the decoded length of a temporary exposure key.
	KeyLength = 16

	// Rolling period constraints (inclusive..inclusive). A rolling period is
	// expressed in 10 minute intervals, 144 of them make a day.
	MinRollingPeriod = 1
	MaxRollingPeriod = 144

	// Interval length of the GAEN time grid.
	IntervalLength = 10 * time.Minute

	// Upload size bounds. Clients pad their uploads with fake keys so the
	// request size does not reveal how many real keys a device holds.
	MinKeysPerUploadV1 = 14
	MaxKeysPerUploadV1 = 30
	KeysPerUploadV2    = 30
)

// GaenKey is one temporary exposure key as transported on uploads.
//
// KeyData is the base64 encoding of exactly KeyLength random bytes.
// RollingStartNumber and RollingPeriod are on the 10 minute interval grid.
// TransmissionRiskLevel is legacy and carried through unchanged.
// Fake is 1 for padding keys, which are validated but never stored.
type GaenKey struct {
	KeyData               string `json:"keyData"`
	RollingStartNumber    int32  `json:"rollingStartNumber"`
	RollingPeriod         int32  `json:"rollingPeriod"`
	TransmissionRiskLevel int32  `json:"transmissionRiskLevel,omitempty"`
	Fake                  int32  `json:"fake"`
}

// IsFake reports whether the key is upload padding.
func (k *GaenKey) IsFake() bool {
	return k.Fake == 1
}

// GaenRequest is the body of the V1 upload. DelayedKeyDate names the 10
// minute interval of the start of the day whose key the device can only
// deliver tomorrow; the response carries a JWT authorizing exactly that
// delivery.
type GaenRequest struct {
	GaenKeys       []GaenKey `json:"gaenKeys"`
	DelayedKeyDate int32     `json:"delayedKeyDate"`
}

// GaenSecondDay is the body of the V1 next-day upload.
type GaenSecondDay struct {
	DelayedKey GaenKey `json:"delayedKey"`
}

// GaenV2UploadKeysRequest is the body of the V2 and V2-UMA uploads. Exactly
// KeysPerUploadV2 keys, some of them possibly fake.
type GaenV2UploadKeysRequest struct {
	GaenKeys []GaenKey `json:"gaenKeys"`
}

// GaenResponse is the JSON body of V1 upload responses and of protocol
// errors on every surface.
type GaenResponse struct {
	Response     string `json:"response,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}
