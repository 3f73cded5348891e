//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package ethereum

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// signer serializes sends per account so two flows never race for a nonce.
type signer struct {
	mu   sync.Mutex
	opts *bind.TransactOpts
}

func (s *signer) send(ctx context.Context, c contract, method string, params ...interface{}) (*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := *s.opts
	opts.Context = ctx
	return c.Transact(&opts, method, params...)
}

func loadSigners(keys []string, chainID *big.Int) (map[common.Address]*signer, error) {
	signers := make(map[common.Address]*signer, len(keys))
	for i, k := range keys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(k), "0x"))
		if err != nil {
			// the key itself must not end up in logs
			return nil, errors.Errorf("failed to parse ledger key #%d", i)
		}
		opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build transactor for key #%d", i)
		}
		signers[opts.From] = &signer{opts: opts}
	}
	return signers, nil
}
