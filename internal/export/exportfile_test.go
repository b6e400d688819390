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
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
)

func testAssembler(tb testing.TB) (*Assembler, *ecdsa.PrivateKey) {
	tb.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatal(err)
	}
	cfg := &Config{
		Region:        "es",
		Algorithm:     "1.2.840.10045.4.3.2",
		KeyVersion:    "v1",
		KeyIdentifier: "214",
		BundleID:      "es.gob.radarcovid",
		PackageName:   "es.gob.radarcovid",
	}
	return NewAssembler(cfg, priv), priv
}

func testKeys(tb testing.TB, n int, start time.Time) []*gaen.TemporaryExposureKey {
	tb.Helper()

	keys := make([]*gaen.TemporaryExposureKey, 0, n)
	for i := 0; i < n; i++ {
		raw, err := project.RandomBytes(16)
		if err != nil {
			tb.Fatal(err)
		}
		keys = append(keys, &gaen.TemporaryExposureKey{
			KeyData:            base64.StdEncoding.EncodeToString(raw),
			RollingStartNumber: gaen.IntervalNumber(start.AddDate(0, 0, -i)),
			RollingPeriod:      144,
		})
	}
	return keys
}

func TestMarshalExportFile(t *testing.T) {
	t.Parallel()

	a, priv := testAssembler(t)
	windowEnd := time.Date(2021, 6, 10, 10, 0, 0, 0, time.UTC)
	windowStart := windowEnd.Add(-2 * time.Hour)
	keys := testKeys(t, 5, windowStart.AddDate(0, 0, -1))

	archive, err := a.MarshalExportFile(keys, windowStart, windowEnd)
	if err != nil {
		t.Fatal(err)
	}

	export, digest, err := UnmarshalExportFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := export.GetRegion(), "es"; got != want {
		t.Errorf("region: got %q, want %q", got, want)
	}
	if got, want := export.GetStartTimestamp(), uint64(windowStart.Unix()); got != want {
		t.Errorf("start timestamp: got %d, want %d", got, want)
	}
	if got, want := export.GetEndTimestamp(), uint64(windowEnd.Unix()); got != want {
		t.Errorf("end timestamp: got %d, want %d", got, want)
	}
	if export.GetBatchNum() != 1 || export.GetBatchSize() != 1 {
		t.Errorf("expected batch 1/1, got %d/%d", export.GetBatchNum(), export.GetBatchSize())
	}
	if got, want := len(export.GetKeys()), len(keys); got != want {
		t.Fatalf("expected %d keys, got %d", want, got)
	}
	for i, pbek := range export.GetKeys() {
		raw, err := keys[i].KeyBytes()
		if err != nil {
			t.Fatal(err)
		}
		if got := pbek.GetKeyData(); string(got) != string(raw) {
			t.Errorf("key %d: material mismatch", i)
		}
		if got, want := pbek.GetRollingPeriod(), int32(144); got != want {
			t.Errorf("key %d: rolling period %d, want %d", i, got, want)
		}
	}

	sigList, err := UnmarshalSignatureFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(sigList.GetSignatures()), 1; got != want {
		t.Fatalf("expected %d signature, got %d", want, got)
	}
	sig := sigList.GetSignatures()[0]
	if got, want := sig.GetSignatureInfo().GetVerificationKeyId(), "214"; got != want {
		t.Errorf("key id: got %q, want %q", got, want)
	}
	if got, want := sig.GetSignatureInfo().GetSignatureAlgorithm(), "1.2.840.10045.4.3.2"; got != want {
		t.Errorf("algorithm: got %q, want %q", got, want)
	}
	if !ecdsa.VerifyASN1(&priv.PublicKey, digest, sig.GetSignature()) {
		t.Error("signature does not verify over export.bin")
	}
}

// TestMarshalExportFile_HeaderStable marshals twice and checks that the
// shared header bytes survive, an append into the header slice would
// corrupt every later archive.
func TestMarshalExportFile_HeaderStable(t *testing.T) {
	t.Parallel()

	a, _ := testAssembler(t)
	windowEnd := time.Date(2021, 6, 10, 10, 0, 0, 0, time.UTC)
	windowStart := windowEnd.Add(-2 * time.Hour)

	for i := 0; i < 2; i++ {
		archive, err := a.MarshalExportFile(testKeys(t, 3, windowStart.AddDate(0, 0, -1)), windowStart, windowEnd)
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := UnmarshalExportFile(archive); err != nil {
			t.Fatalf("marshal %d: %v", i, err)
		}
	}
	if got, want := string(fixedHeader), "EK Export v1    "; got != want {
		t.Errorf("header bytes changed: %q", got)
	}
}

func TestMarshalExportFile_Empty(t *testing.T) {
	t.Parallel()

	a, _ := testAssembler(t)
	windowEnd := time.Date(2021, 6, 10, 10, 0, 0, 0, time.UTC)

	archive, err := a.MarshalExportFile(nil, windowEnd.Add(-2*time.Hour), windowEnd)
	if err != nil {
		t.Fatal(err)
	}
	export, _, err := UnmarshalExportFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(export.GetKeys()); got != 0 {
		t.Errorf("expected no keys, got %d", got)
	}
}
