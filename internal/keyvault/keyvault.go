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

// Package keyvault resolves the named signing key pairs used by the
// service: "gaen" signs export archives, "nextDayJWT" signs and verifies
// delayed key tokens, and "hashFilter" signs response digests.
package keyvault

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/keys"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/logging"
)

// Names of the key pairs the service resolves at startup.
const (
	PairGAEN       = "gaen"
	PairNextDayJWT = "nextDayJWT"
	PairHashFilter = "hashFilter"
)

// KMSPrefix marks key material as a reference to be resolved through the
// configured key manager instead of inline material.
const KMSPrefix = "kms://"

// KeyPair is a resolved named signing key. The signer is always usable,
// even when the private half lives in an external KMS.
type KeyPair struct {
	name   string
	signer crypto.Signer
	public *ecdsa.PublicKey
}

// Name returns the pair name.
func (p *KeyPair) Name() string { return p.name }

// Signer returns the private half as an opaque signer.
func (p *KeyPair) Signer() crypto.Signer { return p.signer }

// Public returns the public half.
func (p *KeyPair) Public() *ecdsa.PublicKey { return p.public }

// Private returns the concrete ECDSA private key when the pair is held
// in process. Pairs resolved through a key manager return an error.
func (p *KeyPair) Private() (*ecdsa.PrivateKey, error) {
	pk, ok := p.signer.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key %q is not held in process", p.name)
	}
	return pk, nil
}

// Vault holds the resolved named key pairs.
type Vault struct {
	pairs map[string]*KeyPair
}

// New resolves all named pairs from the configuration. A pair with no
// configured material gets an ephemeral generated key so a development
// server can start without any key setup.
func New(ctx context.Context, cfg *Config, km keys.KeyManager) (*Vault, error) {
	v := &Vault{pairs: make(map[string]*KeyPair, 3)}

	for _, p := range []struct {
		name string
		priv string
		pub  string
	}{
		{PairGAEN, cfg.GAENPrivateKey, cfg.GAENPublicKey},
		{PairNextDayJWT, cfg.NextDayJWTPrivateKey, cfg.NextDayJWTPublicKey},
		{PairHashFilter, cfg.HashFilterPrivateKey, cfg.HashFilterPublicKey},
	} {
		pair, err := resolvePair(ctx, km, p.name, p.priv, p.pub)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve key %q: %w", p.name, err)
		}
		v.pairs[p.name] = pair
	}

	return v, nil
}

// Get returns the named pair.
func (v *Vault) Get(name string) (*KeyPair, error) {
	p, ok := v.pairs[name]
	if !ok {
		return nil, fmt.Errorf("unknown key pair: %q", name)
	}
	return p, nil
}

func resolvePair(ctx context.Context, km keys.KeyManager, name, priv, pub string) (*KeyPair, error) {
	logger := logging.FromContext(ctx)

	var signer crypto.Signer
	switch {
	case priv == "" && pub != "":
		return nil, fmt.Errorf("public key configured without a private key")
	case priv == "":
		logger.Warnw("no key material configured, generating ephemeral keypair, signatures will not survive a restart",
			"name", name)
		pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		signer = pk
	case strings.HasPrefix(priv, KMSPrefix):
		if km == nil {
			return nil, fmt.Errorf("key is a key manager reference, but no key manager is configured")
		}
		s, err := km.NewSigner(ctx, strings.TrimPrefix(priv, KMSPrefix))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve key manager reference: %w", err)
		}
		signer = s
	default:
		pk, err := ParsePrivateKey(priv)
		if err != nil {
			return nil, err
		}
		signer = pk
	}

	public, ok := signer.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signer is not an EC key (got %T)", signer.Public())
	}
	if pub != "" {
		parsed, err := ParsePublicKey(pub)
		if err != nil {
			return nil, err
		}
		if !public.Equal(parsed) {
			return nil, fmt.Errorf("configured public key does not match the private key")
		}
		public = parsed
	}

	return &KeyPair{name: name, signer: signer, public: public}, nil
}
