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

package serverenv

import (
	"context"
	"testing"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/pkg/secrets"
)

func TestServerEnv(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	sm, err := secrets.NewInMemory(ctx, &secrets.Config{})
	if err != nil {
		t.Fatal(err)
	}

	env := New(ctx, WithSecretManager(sm))
	if env.SecretManager() == nil {
		t.Error("expected a secret manager")
	}
	if env.Database() != nil {
		t.Error("expected no database")
	}
	if env.KeyVault() != nil {
		t.Error("expected no key vault")
	}

	// Closing an empty env must not fail.
	if err := env.Close(ctx); err != nil {
		t.Errorf("close: %v", err)
	}
}
