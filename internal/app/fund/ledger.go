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

package fund

import (
	"context"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TxStatus mirrors the status code of a ledger receipt.
type TxStatus uint64

const (
	TxReverted  TxStatus = 0
	TxSucceeded TxStatus = 1
)

// Receipt is the outcome of a ledger write.
type Receipt struct {
	TxID   string   `json:"tx_id"`
	Status TxStatus `json:"status"`
}

// Accepted reports whether the ledger recorded the write.
func (r Receipt) Accepted() bool {
	return r.Status == TxSucceeded
}

// CheckReceipt turns a receipt with a non-success status into ErrRejectedByLedger.
func CheckReceipt(r Receipt, err error) (Receipt, error) {
	if err != nil {
		return r, err
	}
	if !r.Accepted() {
		return r, errors.Wrapf(ErrRejectedByLedger, "tx %s finished with status %d", r.TxID, r.Status)
	}
	return r, nil
}

// OneTimeCode is the secret delivered out of band after a challenge.
type OneTimeCode string

// ParseOneTimeCode accepts decimal digits only; the contract takes the code as uint256.
func ParseOneTimeCode(s string) (OneTimeCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.Wrap(ErrInvalidCode, "empty code")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", errors.Wrap(ErrInvalidCode, "code must be numeric")
		}
	}
	if v, _ := new(big.Int).SetString(s, 10); v.BitLen() > uint256Bits {
		return "", errors.Wrap(ErrInvalidCode, "code does not fit uint256")
	}
	return OneTimeCode(s), nil
}

// String never reveals the code.
func (c OneTimeCode) String() string {
	return "******"
}

// Digits returns the raw code for the gateway.
func (c OneTimeCode) Digits() string {
	return string(c)
}

// LedgerGateway reads and writes the fund contract on behalf of an account.
type LedgerGateway interface {
	ReadMember(ctx context.Context, account Account) (MemberRecord, error)
	ReadPot(ctx context.Context) (decimal.Decimal, error)
	ReadCurrentPeriod(ctx context.Context) (Period, error)
	ReadPendingCompensation(ctx context.Context, period Period, account Account) (decimal.Decimal, error)

	RequestContributionChallenge(ctx context.Context, amount decimal.Decimal, account Account) (Receipt, error)
	SubmitContribution(ctx context.Context, otp OneTimeCode, amount decimal.Decimal, account Account) (Receipt, error)
	RequestPayoutChallenge(ctx context.Context, account Account) (Receipt, error)
	SubmitPayout(ctx context.Context, otp OneTimeCode, account Account) (Receipt, error)
}
