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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/observability"
)

type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func (DefaultClock) Now() time.Time {
	return time.Now()
}

// ChallengeLimiter bounds how often an account may ask for a new one-time code.
type ChallengeLimiter interface {
	Allow(key string, now time.Time) bool
}

// Deps are the collaborators of a Controller. Only Gateway is required.
type Deps struct {
	Gateway fund.LedgerGateway
	Journal fund.Journal
	Events  fund.EventPublisher
	Limiter ChallengeLimiter
	Metrics *observability.FlowMetrics
	Log     logrus.FieldLogger
	Clock   Clock
	// Advisory lifetime of a one-time code, shown as a countdown.
	CodeTTL time.Duration
}

// Controller owns one member's snapshot and drives the contribution and
// payout flows. Ledger calls are made without holding the lock, so Refresh
// never waits for a flow step and the two flows never wait for each other.
type Controller struct {
	account fund.Account
	deps    Deps
	log     logrus.FieldLogger

	mu         sync.Mutex
	snapshot   *fund.Snapshot
	refreshErr error
	refreshSeq uint64
	appliedSeq uint64
	errSeq     uint64

	contribution flow
	payout       flow
}

func NewController(account fund.Account, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = DefaultClock{}
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Controller{
		account:      account,
		deps:         deps,
		log:          deps.Log.WithField("account", account),
		contribution: flow{action: fund.ActionContribution},
		payout:       flow{action: fund.ActionPayout},
	}
}

func (c *Controller) Account() fund.Account {
	return c.account
}

// StartContribution asks the ledger to issue a one-time code for amount.
// The amount is bound to the attempt and cannot change until it ends.
func (c *Controller) StartContribution(ctx context.Context, amount decimal.Decimal) (fund.Receipt, error) {
	if err := fund.ValidateAmount(amount); err != nil {
		return fund.Receipt{}, err
	}
	return c.start(ctx, &c.contribution, amount, func(ctx context.Context) (fund.Receipt, error) {
		return c.deps.Gateway.RequestContributionChallenge(ctx, amount, c.account)
	})
}

// SubmitContribution sends the code together with the amount the member
// confirmed. It must equal the challenged amount.
func (c *Controller) SubmitContribution(ctx context.Context, otp string, amount decimal.Decimal) (fund.Receipt, error) {
	return c.submit(ctx, &c.contribution, &amount, otp, func(ctx context.Context, a *attempt, code fund.OneTimeCode) (fund.Receipt, error) {
		return c.deps.Gateway.SubmitContribution(ctx, code, a.amount, c.account)
	})
}

func (c *Controller) CancelContribution() error {
	return c.cancel(&c.contribution)
}

// StartPayout asks the ledger to issue a one-time code for claiming the
// pending compensation. The ledger decides the amount; journal entries and
// events carry the compensation last read before the challenge.
func (c *Controller) StartPayout(ctx context.Context) (fund.Receipt, error) {
	return c.start(ctx, &c.payout, decimal.Zero, func(ctx context.Context) (fund.Receipt, error) {
		return c.deps.Gateway.RequestPayoutChallenge(ctx, c.account)
	})
}

func (c *Controller) SubmitPayout(ctx context.Context, otp string) (fund.Receipt, error) {
	return c.submit(ctx, &c.payout, nil, otp, func(ctx context.Context, _ *attempt, code fund.OneTimeCode) (fund.Receipt, error) {
		return c.deps.Gateway.SubmitPayout(ctx, code, c.account)
	})
}

func (c *Controller) CancelPayout() error {
	return c.cancel(&c.payout)
}

// History lists the latest ledger writes of the account, newest first.
func (c *Controller) History(ctx context.Context, limit int) ([]fund.JournalEntry, error) {
	if err := fund.CheckHistoryLimit(limit); err != nil {
		return nil, err
	}
	if c.deps.Journal == nil {
		return nil, nil
	}
	return c.deps.Journal.ByAccount(ctx, c.account, limit)
}

func (c *Controller) start(
	ctx context.Context,
	f *flow,
	amount decimal.Decimal,
	request func(context.Context) (fund.Receipt, error),
) (fund.Receipt, error) {
	a, actx, err := c.begin(ctx, f, amount)
	if err != nil {
		return fund.Receipt{}, err
	}
	defer a.cancel()

	started := time.Now()
	receipt, err := fund.CheckReceipt(request(actx))
	c.deps.Metrics.Since(string(f.action)+"_"+string(fund.StepChallenge), started)

	c.mu.Lock()
	switch {
	case f.current != a:
		// The outcome of a cancelled or replaced attempt is dropped.
		err = errors.Wrapf(fund.ErrFlowCancelled, "attempt %s", a.id)
	case err != nil:
		c.setPhase(f, fund.PhaseIdle)
		f.lastErr = err
	default:
		a.codeIssuedAt = c.deps.Clock.Now()
		c.setPhase(f, fund.PhaseAwaitingCode)
	}
	c.mu.Unlock()

	c.record(ctx, a, f.action, fund.StepChallenge, receipt, err)
	return receipt, err
}

func (c *Controller) begin(ctx context.Context, f *flow, amount decimal.Decimal) (*attempt, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.phase.Active() {
		return nil, nil, errors.Wrapf(fund.ErrFlowActive, "%s is %s", f.action, f.phase)
	}
	if c.deps.Limiter != nil && !c.deps.Limiter.Allow(string(c.account), c.deps.Clock.Now()) {
		err := errors.Wrapf(fund.ErrThrottled, "%s challenge", f.action)
		f.lastErr = err
		return nil, nil, err
	}

	if f.action == fund.ActionPayout && c.snapshot != nil {
		amount = c.snapshot.PendingCompensation
	}
	actx, cancel := context.WithCancel(ctx)
	a := &attempt{
		id:     uuid.New(),
		amount: amount,
		cancel: cancel,
	}
	f.current = a
	f.lastErr = nil
	c.setPhase(f, fund.PhaseAwaitingChallenge)
	return a, actx, nil
}

func (c *Controller) submit(
	ctx context.Context,
	f *flow,
	amount *decimal.Decimal,
	rawCode string,
	send func(context.Context, *attempt, fund.OneTimeCode) (fund.Receipt, error),
) (fund.Receipt, error) {
	a, code, err := c.prepareSubmit(f, amount, rawCode)
	if err != nil {
		return fund.Receipt{}, err
	}

	started := time.Now()
	receipt, err := fund.CheckReceipt(send(ctx, a, code))
	c.deps.Metrics.Since(string(f.action)+"_"+string(fund.StepSubmit), started)
	c.record(ctx, a, f.action, fund.StepSubmit, receipt, err)

	if err != nil {
		c.mu.Lock()
		if errors.Is(err, fund.ErrCodeExpired) {
			c.setPhase(f, fund.PhaseIdle)
		} else {
			c.setPhase(f, fund.PhaseAwaitingCode)
		}
		f.lastErr = err
		c.mu.Unlock()
		return receipt, err
	}

	// The write is final at this point; a failed refresh is surfaced on its own.
	if _, rerr := c.Refresh(ctx); rerr != nil {
		c.log.WithError(rerr).Warn("failed to refresh after settlement")
	}

	c.mu.Lock()
	c.setPhase(f, fund.PhaseIdle)
	f.lastErr = nil
	c.mu.Unlock()

	c.publish(ctx, a, f.action, receipt)
	return receipt, nil
}

func (c *Controller) prepareSubmit(f *flow, amount *decimal.Decimal, rawCode string) (*attempt, fund.OneTimeCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch f.phase {
	case fund.PhaseIdle:
		return nil, "", errors.Wrapf(fund.ErrNoCodePending, "%s", f.action)
	case fund.PhaseAwaitingChallenge, fund.PhaseSettling:
		return nil, "", errors.Wrapf(fund.ErrFlowBusy, "%s is %s", f.action, f.phase)
	}

	a := f.current
	if amount != nil && !amount.Equal(a.amount) {
		err := errors.Wrapf(fund.ErrAmountMismatch, "challenged %s, submitted %s", a.amount, amount)
		f.lastErr = err
		return nil, "", err
	}
	code, err := fund.ParseOneTimeCode(rawCode)
	if err != nil {
		f.lastErr = err
		return nil, "", err
	}
	c.setPhase(f, fund.PhaseSettling)
	return a, code, nil
}

func (c *Controller) cancel(f *flow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch f.phase {
	case fund.PhaseIdle:
		return nil
	case fund.PhaseSettling:
		return errors.Wrapf(fund.ErrFlowBusy, "%s is %s", f.action, f.phase)
	}

	a := f.current
	c.setPhase(f, fund.PhaseIdle)
	f.lastErr = nil
	// The challenge already sent stays on the ledger unused.
	a.cancel()
	c.deps.Metrics.Cancelled(string(f.action))
	c.log.WithFields(logrus.Fields{
		"flow":       f.action,
		"attempt_id": a.id,
	}).Info("flow cancelled")
	return nil
}

// setPhase must be called with c.mu held.
func (c *Controller) setPhase(f *flow, p fund.Phase) {
	if f.phase.Active() != p.Active() {
		delta := 1.0
		if !p.Active() {
			delta = -1
		}
		c.deps.Metrics.ActiveDelta(string(f.action), delta)
	}
	f.phase = p
	if !p.Active() {
		f.current = nil
	}
}

func (c *Controller) record(ctx context.Context, a *attempt, action fund.Action, step fund.Step, receipt fund.Receipt, err error) {
	kind := fund.KindOf(err)
	c.deps.Metrics.Step(string(action), string(step), string(kind))

	log := c.log.WithFields(logrus.Fields{
		"flow":       action,
		"step":       step,
		"attempt_id": a.id,
		"tx_id":      receipt.TxID,
		"status":     receipt.Status,
	})
	if err != nil {
		log.WithError(err).Warn("ledger write failed")
	} else {
		log.Info("ledger write accepted")
	}

	if c.deps.Journal == nil {
		return
	}
	entry := fund.JournalEntry{
		AttemptID: a.id.String(),
		Account:   c.account,
		Action:    action,
		Step:      step,
		Amount:    a.amount,
		TxID:      receipt.TxID,
		Status:    receipt.Status,
		ErrorKind: kind,
		CreatedAt: c.deps.Clock.Now(),
	}
	if jerr := c.deps.Journal.Record(ctx, entry); jerr != nil {
		log.WithError(jerr).Error("failed to journal ledger write")
	}
}

func (c *Controller) publish(ctx context.Context, a *attempt, action fund.Action, receipt fund.Receipt) {
	if c.deps.Events == nil {
		return
	}
	event := fund.FlowSettled{
		AttemptID:  a.id.String(),
		Account:    c.account,
		Action:     action,
		Amount:     a.amount,
		TxID:       receipt.TxID,
		OccurredAt: c.deps.Clock.Now(),
	}
	if err := c.deps.Events.Publish(ctx, event); err != nil {
		c.log.WithError(err).WithField("tx_id", receipt.TxID).Error("failed to publish settlement")
	}
}
