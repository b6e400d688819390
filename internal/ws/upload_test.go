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
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/project"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/verification"
	v1 "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/api/v1"

	"github.com/golang-jwt/jwt"
)

func TestUploadV1(t *testing.T) {
	t.Parallel()

	srv, router, authority := newTestServer(t, nil)
	ctx := project.TestContext(t)

	body := &v1.GaenRequest{
		GaenKeys: []v1.GaenKey{
			makeKey(t, dayStartInterval(1), 144),
			makeKey(t, dayStartInterval(2), 144),
		},
		DelayedKeyDate: dayStartInterval(0),
	}

	w := postJSON(t, router, "/v1/gaen/exposed", body, authority.token(t, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("wanted 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); !strings.Contains(got, `"response":"OK"`) {
		t.Errorf("unexpected body: %s", got)
	}

	// The response carries the token for tomorrow's delivery.
	auth := w.Header().Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		t.Fatalf("missing bearer response header, got %q", auth)
	}
	claims, err := srv.verifier.VerifyNextDay(auth, testNow)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.DelayedKeyDate != body.DelayedKeyDate {
		t.Errorf("delayedKeyDate = %d, want %d", claims.DelayedKeyDate, body.DelayedKeyDate)
	}
	if claims.Fake {
		t.Error("real upload produced a fake token")
	}

	// Both keys are stored and become visible once their bucket closes.
	keys, err := srv.store.SortedExposedSince(ctx, testNow.Add(-24*time.Hour), testNow.Add(testBucket), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Errorf("stored %d keys, want 2", len(keys))
	}
}

func TestUploadV1_Unauthorized(t *testing.T) {
	t.Parallel()

	_, router, authority := newTestServer(t, nil)

	body := &v1.GaenRequest{
		GaenKeys:       []v1.GaenKey{makeKey(t, dayStartInterval(1), 144)},
		DelayedKeyDate: dayStartInterval(0),
	}

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "Bearer not.a.token"},
		{"expired", authority.token(t, func(c jwt.MapClaims) {
			c["exp"] = testNow.Add(-3 * time.Hour).Unix()
		})},
		{"wrong scope", authority.token(t, func(c jwt.MapClaims) {
			c["scope"] = verification.ScopeExposedNextDay
		})},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := postJSON(t, router, "/v1/gaen/exposed", body, tc.token)
			if w.Code != http.StatusForbidden {
				t.Fatalf("wanted 403, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUploadV1_BadKey(t *testing.T) {
	t.Parallel()

	_, router, authority := newTestServer(t, nil)

	key := makeKey(t, dayStartInterval(1), 144)
	key.KeyData = "definitely not base64!!"

	body := &v1.GaenRequest{
		GaenKeys:       []v1.GaenKey{key},
		DelayedKeyDate: dayStartInterval(0),
	}

	w := postJSON(t, router, "/v1/gaen/exposed", body, authority.token(t, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wanted 400, got %d: %s", w.Code, w.Body.String())
	}
}

// TestUploadV1_DelayedKeyDateOutOfRange checks that no next day token is
// issued for a day outside yesterday through tomorrow.
func TestUploadV1_DelayedKeyDateOutOfRange(t *testing.T) {
	t.Parallel()

	_, router, authority := newTestServer(t, nil)

	cases := []struct {
		name string
		date int32
		want int
	}{
		{"yesterday", dayStartInterval(1), http.StatusOK},
		{"tomorrow", dayStartInterval(-1), http.StatusOK},
		{"two days ago", dayStartInterval(2), http.StatusBadRequest},
		{"next week", dayStartInterval(-7), http.StatusBadRequest},
		{"zero", 0, http.StatusBadRequest},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			body := &v1.GaenRequest{
				GaenKeys:       []v1.GaenKey{makeKey(t, dayStartInterval(1), 144)},
				DelayedKeyDate: tc.date,
			}
			w := postJSON(t, router, "/v1/gaen/exposed", body, authority.token(t, nil))
			if w.Code != tc.want {
				t.Fatalf("wanted %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
			if tc.want == http.StatusOK {
				return
			}
			if auth := w.Header().Get("Authorization"); auth != "" {
				t.Errorf("rejected upload still issued a token: %q", auth)
			}
		})
	}
}

func TestUploadV1_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, router, authority := newTestServer(t, nil)

	w := postRaw(t, router, "/v1/gaen/exposed", `{"gaenKeys": 42}`, authority.token(t, nil), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wanted 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadNextDay(t *testing.T) {
	t.Parallel()

	srv, router, authority := newTestServer(t, nil)

	first := &v1.GaenRequest{
		GaenKeys:       []v1.GaenKey{makeKey(t, dayStartInterval(1), 144)},
		DelayedKeyDate: dayStartInterval(0),
	}
	w := postJSON(t, router, "/v1/gaen/exposed", first, authority.token(t, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first day upload failed: %d %s", w.Code, w.Body.String())
	}
	nextDayToken := w.Header().Get("Authorization")

	// The next day the device delivers the key that was still live
	// yesterday.
	srv.now = at(testNow.AddDate(0, 0, 1))

	second := &v1.GaenSecondDay{DelayedKey: makeKey(t, dayStartInterval(0), 144)}
	w = postJSON(t, router, "/v1/gaen/exposednextday", second, nextDayToken)
	if w.Code != http.StatusOK {
		t.Fatalf("next day upload failed: %d %s", w.Code, w.Body.String())
	}

	// The token is single use.
	w = postJSON(t, router, "/v1/gaen/exposednextday", second, nextDayToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("replay wanted 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadNextDay_DateMismatch(t *testing.T) {
	t.Parallel()

	srv, router, authority := newTestServer(t, nil)

	first := &v1.GaenRequest{
		GaenKeys:       []v1.GaenKey{makeKey(t, dayStartInterval(1), 144)},
		DelayedKeyDate: dayStartInterval(0),
	}
	w := postJSON(t, router, "/v1/gaen/exposed", first, authority.token(t, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first day upload failed: %d %s", w.Code, w.Body.String())
	}
	nextDayToken := w.Header().Get("Authorization")

	srv.now = at(testNow.AddDate(0, 0, 1))

	// Key does not start at the interval the token authorizes.
	second := &v1.GaenSecondDay{DelayedKey: makeKey(t, dayStartInterval(1), 144)}
	w = postJSON(t, router, "/v1/gaen/exposednextday", second, nextDayToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wanted 400, got %d: %s", w.Code, w.Body.String())
	}

	// A v1 token on the next day endpoint is the wrong scope.
	w = postJSON(t, router, "/v1/gaen/exposednextday", second, authority.token(t, nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("wanted 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadV2(t *testing.T) {
	t.Parallel()

	srv, router, authority := newTestServer(t, nil)
	ctx := project.TestContext(t)

	// A V2 client pads its upload to exactly 30 keys.
	body := &v1.GaenV2UploadKeysRequest{}
	for i := 1; i <= 14; i++ {
		body.GaenKeys = append(body.GaenKeys, makeKey(t, dayStartInterval(i), 144))
	}
	for i := len(body.GaenKeys); i < v1.KeysPerUploadV2; i++ {
		fake := makeKey(t, dayStartInterval(1), 144)
		fake.Fake = 1
		body.GaenKeys = append(body.GaenKeys, fake)
	}

	for _, path := range []string{"/v2/gaen/exposed", "/v2UMA/gaen/exposed"} {
		w := postJSON(t, router, path, body, authority.token(t, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: wanted 200, got %d: %s", path, w.Code, w.Body.String())
		}
		if got := w.Body.String(); got != "OK" {
			t.Errorf("%s: body = %q, want OK", path, got)
		}
	}

	// Fake keys are dropped, the second upload of the same set is
	// idempotent.
	keys, err := srv.store.SortedExposedSince(ctx, testNow.Add(-15*24*time.Hour), testNow.Add(testBucket), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 14 {
		t.Errorf("stored %d keys, want 14", len(keys))
	}
}

func TestUploadChaff(t *testing.T) {
	t.Parallel()

	srv, router, _ := newTestServer(t, nil)
	ctx := project.TestContext(t)

	// A chaff request is answered without touching the pipeline.
	w := postRaw(t, router, "/v1/gaen/exposed", `{"gaenKeys": []}`, "", map[string]string{"X-Chaff": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("chaff wanted 200, got %d", w.Code)
	}

	keys, err := srv.store.SortedExposedSince(ctx, testNow.Add(-15*24*time.Hour), testNow.Add(testBucket), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("chaff stored %d keys, want 0", len(keys))
	}
}

func TestMaintenanceMode(t *testing.T) {
	t.Parallel()

	_, router, authority := newTestServer(t, func(c *Config) {
		c.Maintenance = true
	})

	body := &v1.GaenRequest{
		GaenKeys:       []v1.GaenKey{makeKey(t, dayStartInterval(1), 144)},
		DelayedKeyDate: dayStartInterval(0),
	}
	w := postJSON(t, router, "/v1/gaen/exposed", body, authority.token(t, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("wanted 429, got %d", w.Code)
	}

	w = get(t, router, "/v1/gaen")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("wanted 429, got %d", w.Code)
	}
}
