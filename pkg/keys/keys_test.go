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

package keys

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"testing"
)

func TestTestSigningKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kms := TestKeyManager(t)

	parent := TestSigningKey(t, kms)

	versions, err := kms.(SigningKeyManager).SigningKeyVersions(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 {
		t.Fatalf("got %d key versions, want 1", len(versions))
	}

	signer, err := versions[0].Signer(ctx)
	if err != nil {
		t.Fatal(err)
	}

	digest := sha256.Sum256([]byte("payload"))
	sig, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		t.Fatal(err)
	}

	pub, ok := signer.Public().(*ecdsa.PublicKey)
	if !ok {
		t.Fatalf("public key is %T, want *ecdsa.PublicKey", signer.Public())
	}
	if !ecdsa.VerifyASN1(pub, digest[:], sig) {
		t.Error("signature did not verify")
	}
}

func TestTestEncryptionKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kms := TestKeyManager(t)

	keyID := TestEncryptionKey(t, kms)

	ekm := kms
	plaintext := []byte("super secret")
	aad := []byte("context")

	ciphertext, err := ekm.Encrypt(ctx, keyID, plaintext, aad)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	got, err := ekm.Decrypt(ctx, keyID, ciphertext, aad)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("decrypted %q, want %q", got, plaintext)
	}

	// Mismatched additional data must not decrypt.
	if _, err := ekm.Decrypt(ctx, keyID, ciphertext, []byte("other")); err == nil {
		t.Error("decrypt succeeded with wrong aad")
	}
}
