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
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"math/rand"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
)

func TestMarshalFilterFile(t *testing.T) {
	t.Parallel()

	a, priv := testAssembler(t)
	now := time.Date(2021, 6, 10, 10, 0, 0, 0, time.UTC)
	keys := testKeys(t, 200, now.AddDate(0, 0, -1))

	archive, err := a.MarshalFilterFile(keys)
	if err != nil {
		t.Fatal(err)
	}

	filterBytes, err := archiveEntry(archive, exportBinaryName)
	if err != nil {
		t.Fatal(err)
	}
	filter, err := DecodeFilter(filterBytes)
	if err != nil {
		t.Fatal(err)
	}

	for i, k := range keys {
		item, err := FilterItem(k)
		if err != nil {
			t.Fatal(err)
		}
		if !filter.Lookup(item) {
			t.Errorf("key %d missing from filter", i)
		}
	}

	// The signature covers the raw filter bytes, no fixed header.
	sigList, err := UnmarshalSignatureFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	digest := sha256.Sum256(filterBytes)
	if !ecdsa.VerifyASN1(&priv.PublicKey, digest[:], sigList.GetSignatures()[0].GetSignature()) {
		t.Error("signature does not verify over filter bytes")
	}
}

func TestFilterFalsePositiveRate(t *testing.T) {
	t.Parallel()

	a, _ := testAssembler(t)
	now := time.Date(2021, 6, 10, 10, 0, 0, 0, time.UTC)
	keys := testKeys(t, 1000, now.AddDate(0, 0, -1))

	archive, err := a.MarshalFilterFile(keys)
	if err != nil {
		t.Fatal(err)
	}
	filterBytes, err := archiveEntry(archive, exportBinaryName)
	if err != nil {
		t.Fatal(err)
	}
	filter, err := DecodeFilter(filterBytes)
	if err != nil {
		t.Fatal(err)
	}

	// Probe keys that were never inserted. With 16 bit fingerprints the
	// expected rate is near 0.01%, so even 0.1% means the filter geometry
	// regressed.
	rng := rand.New(rand.NewSource(42))
	const samples = 20000
	falsePositives := 0
	for i := 0; i < samples; i++ {
		raw := make([]byte, 16)
		rng.Read(raw)
		item, err := FilterItem(&gaen.TemporaryExposureKey{
			KeyData:            base64.StdEncoding.EncodeToString(raw),
			RollingStartNumber: gaen.IntervalNumber(now),
			RollingPeriod:      144,
		})
		if err != nil {
			t.Fatal(err)
		}
		if filter.Lookup(item) {
			falsePositives++
		}
	}
	if falsePositives > samples/1000 {
		t.Errorf("false positive rate too high: %d of %d", falsePositives, samples)
	}
}

func TestFilterItemDeterministic(t *testing.T) {
	t.Parallel()

	k := &gaen.TemporaryExposureKey{
		KeyData:            base64.StdEncoding.EncodeToString(make([]byte, 16)),
		RollingStartNumber: 2706480,
		RollingPeriod:      144,
	}
	a, err := FilterItem(k)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FilterItem(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("expected identical serializations")
	}
	if len(a) == 0 {
		t.Error("expected non-empty serialization")
	}
}
