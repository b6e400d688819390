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
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/jwthelper"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"

	"github.com/golang-jwt/jwt"
)

// signResponses buffers the response, stamps a Digest header with the body's
// SHA-256 and a Signature header carrying a detached JWS over that digest,
// signed with the hashFilter key. Clients use the pair to verify payload
// integrity independently of TLS. Security headers ride along on every
// response.
func (s *Server) signResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := &bufferedResponse{header: w.Header(), status: http.StatusOK}
		next.ServeHTTP(buf, r)

		body := buf.body.Bytes()
		digest := sha256.Sum256(body)
		digestB64 := base64.StdEncoding.EncodeToString(digest[:])

		w.Header().Set("Digest", "sha-256="+digestB64)
		if sig, err := s.detachedJWS(digestB64); err != nil {
			logging.FromContext(r.Context()).Errorw("signing response", "error", err)
		} else {
			w.Header().Set("Signature", sig)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Xss-Protection", "1; mode=block")

		w.WriteHeader(buf.status)
		w.Write(body)
	})
}

// detachedJWS signs the digest claim and strips the payload segment, the
// verifier reconstructs it from the response body.
func (s *Server) detachedJWS(digestB64 string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"hash-alg": "sha-256",
		"hash":     digestB64,
	})
	signed, err := jwthelper.SignJWT(token, s.hashFilter.Signer())
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(signed, ".", 3)
	return parts[0] + ".." + parts[2], nil
}

// bufferedResponse holds the handler output until the trailing headers are
// known. Header writes pass through so handlers see their own values.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(status int) {
	b.status = status
}
