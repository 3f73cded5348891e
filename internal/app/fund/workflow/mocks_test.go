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

package workflow

import (
	"context"
	"io/ioutil"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/rupfund/memberclient/internal/app/fund"
)

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) ReadMember(ctx context.Context, account fund.Account) (fund.MemberRecord, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(fund.MemberRecord), args.Error(1)
}

func (m *gatewayMock) ReadPot(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *gatewayMock) ReadCurrentPeriod(ctx context.Context) (fund.Period, error) {
	args := m.Called(ctx)
	return args.Get(0).(fund.Period), args.Error(1)
}

func (m *gatewayMock) ReadPendingCompensation(ctx context.Context, period fund.Period, account fund.Account) (decimal.Decimal, error) {
	args := m.Called(ctx, period, account)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *gatewayMock) RequestContributionChallenge(ctx context.Context, amount decimal.Decimal, account fund.Account) (fund.Receipt, error) {
	args := m.Called(ctx, amount, account)
	return args.Get(0).(fund.Receipt), args.Error(1)
}

func (m *gatewayMock) SubmitContribution(ctx context.Context, otp fund.OneTimeCode, amount decimal.Decimal, account fund.Account) (fund.Receipt, error) {
	args := m.Called(ctx, otp, amount, account)
	return args.Get(0).(fund.Receipt), args.Error(1)
}

func (m *gatewayMock) RequestPayoutChallenge(ctx context.Context, account fund.Account) (fund.Receipt, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(fund.Receipt), args.Error(1)
}

func (m *gatewayMock) SubmitPayout(ctx context.Context, otp fund.OneTimeCode, account fund.Account) (fund.Receipt, error) {
	args := m.Called(ctx, otp, account)
	return args.Get(0).(fund.Receipt), args.Error(1)
}

type journalMock struct {
	mu      sync.Mutex
	entries []fund.JournalEntry
	err     error
}

func (j *journalMock) Record(_ context.Context, entry fund.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return j.err
}

func (j *journalMock) ByAccount(_ context.Context, account fund.Account, limit int) ([]fund.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []fund.JournalEntry
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if j.entries[i].Account == account {
			out = append(out, j.entries[i])
		}
	}
	return out, nil
}

type publisherMock struct {
	mock.Mock
}

func (p *publisherMock) Publish(ctx context.Context, event fund.FlowSettled) error {
	return p.Called(ctx, event).Error(0)
}

type denyLimiter struct{}

func (denyLimiter) Allow(string, time.Time) bool {
	return false
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func amountOf(n int64) interface{} {
	want := decimal.NewFromInt(n)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func silentLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	return log
}
