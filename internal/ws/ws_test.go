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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/export"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/keyvault"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/serverenv"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/database"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var testDatabaseInstance *database.TestInstance

func TestMain(m *testing.M) {
	testDatabaseInstance = database.MustTestInstance()
	defer testDatabaseInstance.MustClose()
	m.Run()
}

// testNow sits inside the 08:00-10:00 UTC release bucket.
var testNow = time.Date(2021, 6, 10, 9, 30, 0, 0, time.UTC)

const testBucket = 2 * time.Hour

func at(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// testAuthority plays the external health authority that signs upload
// tokens.
type testAuthority struct {
	key *ecdsa.PrivateKey
}

func (a *testAuthority) publicPEM(tb testing.TB) string {
	tb.Helper()
	der, err := x509.MarshalPKIXPublicKey(a.key.Public())
	if err != nil {
		tb.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// token signs an exposed-scope upload token valid around testNow. mutate
// adjusts individual claims per test.
func (a *testAuthority) token(tb testing.TB, mutate func(jwt.MapClaims)) string {
	tb.Helper()

	claims := jwt.MapClaims{
		"jti":   uuid.New().String(),
		"scope": verification.ScopeExposed,
		"iat":   testNow.Add(-time.Minute).Unix(),
		"exp":   testNow.Add(time.Hour).Unix(),
		"fake":  "0",
	}
	if mutate != nil {
		mutate(claims)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(a.key)
	if err != nil {
		tb.Fatal(err)
	}
	return "Bearer " + signed
}

func newTestServer(tb testing.TB, mutate func(*Config)) (*Server, *mux.Router, *testAuthority) {
	tb.Helper()
	ctx := project.TestContext(tb)

	db, _ := testDatabaseInstance.NewDatabase(tb)

	vault, err := keyvault.New(ctx, &keyvault.Config{}, nil)
	if err != nil {
		tb.Fatal(err)
	}

	authorityKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatal(err)
	}
	authority := &testAuthority{key: authorityKey}

	cfg := &Config{
		Port:                    "8080",
		ReleaseBucketDuration:   testBucket,
		RequestTime:             time.Millisecond,
		ExposedListCacheControl: 5 * time.Minute,
		RetentionDays:           14,
		KeySizeBytes:            16,
		RandomKeyAmount:         10,
		CountryOrigin:           "ES",
		ReportType:              1,
		TimeSkew:                2 * time.Hour,
		UploadJWTPublicKey:      authority.publicPEM(tb),
		Export: export.Config{
			Region:        "es",
			Algorithm:     "1.2.840.10045.4.3.2",
			KeyVersion:    "v1",
			KeyIdentifier: "214",
			BundleID:      "es.gob.radarcovid",
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	env := serverenv.New(ctx, serverenv.WithDatabase(db), serverenv.WithKeyVault(vault))
	srv, err := NewServer(cfg, env)
	if err != nil {
		tb.Fatal(err)
	}
	srv.now = at(testNow)

	return srv, srv.Routes(ctx), authority
}

// makeKey builds an upload key with fresh random key material.
func makeKey(tb testing.TB, startInterval, rollingPeriod int32) v1.GaenKey {
	tb.Helper()
	raw, err := project.RandomBytes(16)
	if err != nil {
		tb.Fatal(err)
	}
	return v1.GaenKey{
		KeyData:            base64.StdEncoding.EncodeToString(raw),
		RollingStartNumber: startInterval,
		RollingPeriod:      rollingPeriod,
	}
}

// dayStartInterval is the 10 minute interval of the UTC midnight days back
// from testNow.
func dayStartInterval(daysBack int) int32 {
	day := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.UTC)
	return int32(day.AddDate(0, 0, -daysBack).Unix() / 600)
}

func postJSON(tb testing.TB, router *mux.Router, path string, body interface{}, authorization string) *httptest.ResponseRecorder {
	tb.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		tb.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func postRaw(tb testing.TB, router *mux.Router, path, body, authorization string, headers map[string]string) *httptest.ResponseRecorder {
	tb.Helper()

	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func get(tb testing.TB, router *mux.Router, path string) *httptest.ResponseRecorder {
	tb.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}
