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

import (
	"fmt"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/pb/exportv2"

	cuckoo "github.com/panmari/cuckoofilter"
	"google.golang.org/protobuf/proto"
)

// MarshalFilterFile builds the V2-UMA archive: export.bin holds a serialized
// Cuckoo filter over the keys, export.sig the TEKSignatureList signed over
// the filter bytes. Clients test membership instead of parsing a key list.
func (a *Assembler) MarshalFilterFile(keys []*gaen.TemporaryExposureKey) ([]byte, error) {
	filterBytes, err := marshalFilter(keys)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal key filter: %w", err)
	}

	sigContents, err := a.marshalSignature(filterBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal signature file: %w", err)
	}

	return zipArchive(filterBytes, sigContents)
}

func marshalFilter(keys []*gaen.TemporaryExposureKey) ([]byte, error) {
	capacity := len(keys)
	if capacity == 0 {
		capacity = 1
	}
	// The library rounds the capacity up to the next power of two and uses
	// 16 bit fingerprints, keeping the false positive rate near 0.01%.
	filter := cuckoo.NewFilter(uint(capacity))
	for _, k := range keys {
		item, err := FilterItem(k)
		if err != nil {
			return nil, err
		}
		filter.Insert(item)
	}
	return filter.Encode(), nil
}

// FilterItem is the byte sequence a key occupies in the filter. Clients
// must produce the identical serialization to probe membership, so every
// field is set explicitly, including the zero days_since_onset_of_symptoms.
func FilterItem(k *gaen.TemporaryExposureKey) ([]byte, error) {
	raw, err := k.KeyBytes()
	if err != nil {
		return nil, fmt.Errorf("unable to decode key material: %w", err)
	}
	item := exportv2.TemporaryExposureKey{
		KeyData:                    raw,
		RollingStartIntervalNumber: proto.Int32(k.RollingStartNumber),
		RollingPeriod:              proto.Int32(k.RollingPeriod),
		DaysSinceOnsetOfSymptoms:   proto.Int32(0),
	}
	return proto.Marshal(&item)
}

// DecodeFilter restores a filter from export.bin bytes.
func DecodeFilter(encoded []byte) (*cuckoo.Filter, error) {
	return cuckoo.Decode(encoded)
}
