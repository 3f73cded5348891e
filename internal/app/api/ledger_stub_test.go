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

package api

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rupfund/memberclient/internal/app/fund"
)

// ledgerStub behaves like the fund contract for a single member.
type ledgerStub struct {
	mu           sync.Mutex
	member       fund.Account
	contribution decimal.Decimal
	pot          decimal.Decimal
	compensation decimal.Decimal
	code         string
	challenged   decimal.Decimal
	txs          int
}

func newLedgerStub(member fund.Account) *ledgerStub {
	return &ledgerStub{
		member:       member,
		contribution: decimal.NewFromInt(100),
		pot:          decimal.NewFromInt(1000),
		compensation: decimal.NewFromInt(25),
	}
}

func (l *ledgerStub) receipt() fund.Receipt {
	l.txs++
	return fund.Receipt{TxID: "0x" + decimal.NewFromInt(int64(l.txs)).String(), Status: fund.TxSucceeded}
}

func (l *ledgerStub) ReadMember(_ context.Context, account fund.Account) (fund.MemberRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if account != l.member {
		return fund.MemberRecord{}, errors.Wrapf(fund.ErrNotFound, "%s is not a member", account)
	}
	return fund.MemberRecord{Name: "Asha", Village: "Kumbalgodu", Contribution: l.contribution}, nil
}

func (l *ledgerStub) ReadPot(context.Context) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pot, nil
}

func (l *ledgerStub) ReadCurrentPeriod(context.Context) (fund.Period, error) {
	return 7, nil
}

func (l *ledgerStub) ReadPendingCompensation(context.Context, fund.Period, fund.Account) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.compensation, nil
}

func (l *ledgerStub) RequestContributionChallenge(_ context.Context, amount decimal.Decimal, _ fund.Account) (fund.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.code, l.challenged = "1234", amount
	return l.receipt(), nil
}

func (l *ledgerStub) SubmitContribution(_ context.Context, otp fund.OneTimeCode, amount decimal.Decimal, _ fund.Account) (fund.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if otp.Digits() != l.code || !amount.Equal(l.challenged) {
		return fund.Receipt{}, errors.Wrap(fund.ErrInvalidCode, "execution reverted: wrong otp")
	}
	l.code = ""
	l.contribution = l.contribution.Add(amount)
	l.pot = l.pot.Add(amount)
	return l.receipt(), nil
}

func (l *ledgerStub) RequestPayoutChallenge(context.Context, fund.Account) (fund.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.code = "9876"
	return l.receipt(), nil
}

func (l *ledgerStub) SubmitPayout(_ context.Context, otp fund.OneTimeCode, _ fund.Account) (fund.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if otp.Digits() != l.code {
		return fund.Receipt{}, errors.Wrap(fund.ErrInvalidCode, "execution reverted: wrong otp")
	}
	l.code = ""
	l.pot = l.pot.Sub(l.compensation)
	l.compensation = decimal.Zero
	return l.receipt(), nil
}
