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
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupfund/memberclient/internal/app/fund"
)

type ErrorView struct {
	Kind      fund.ErrorKind `json:"kind"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
}

func NewErrorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{
		Kind:      fund.KindOf(err),
		Message:   err.Error(),
		Retryable: fund.Retryable(err),
	}
}

type FlowView struct {
	Action    fund.Action      `json:"action"`
	Phase     fund.Phase       `json:"phase"`
	AttemptID string           `json:"attempt_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	// Advisory countdown, the ledger is the only judge of expiry.
	CodeExpiresAt        *time.Time `json:"code_expires_at,omitempty"`
	CodeRemainingSeconds int64      `json:"code_remaining_seconds,omitempty"`
	LastError            *ErrorView `json:"last_error,omitempty"`
}

// View is everything a renderer needs; it holds no references into the controller.
type View struct {
	Account      fund.Account   `json:"account"`
	Snapshot     *fund.Snapshot `json:"snapshot,omitempty"`
	RefreshError *ErrorView     `json:"refresh_error,omitempty"`
	Contribution FlowView       `json:"contribution"`
	Payout       FlowView       `json:"payout"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.deps.Clock.Now()
	v := View{
		Account:      c.account,
		RefreshError: NewErrorView(c.refreshErr),
		Contribution: c.flowView(&c.contribution, now),
		Payout:       c.flowView(&c.payout, now),
	}
	if c.snapshot != nil {
		snap := *c.snapshot
		v.Snapshot = &snap
	}
	return v
}

// Phase reports the current phase of the flow for action.
func (c *Controller) Phase(action fund.Action) fund.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if action == fund.ActionPayout {
		return c.payout.phase
	}
	return c.contribution.phase
}

// Busy reports whether either flow has left Idle.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contribution.phase.Active() || c.payout.phase.Active()
}

func (c *Controller) flowView(f *flow, now time.Time) FlowView {
	v := FlowView{
		Action:    f.action,
		Phase:     f.phase,
		LastError: NewErrorView(f.lastErr),
	}
	a := f.current
	if a == nil {
		return v
	}
	v.AttemptID = a.id.String()
	if f.action == fund.ActionContribution {
		amount := a.amount
		v.Amount = &amount
	}
	if f.phase == fund.PhaseAwaitingCode && c.deps.CodeTTL > 0 {
		expires := a.codeIssuedAt.Add(c.deps.CodeTTL)
		v.CodeExpiresAt = &expires
		if left := expires.Sub(now); left > 0 {
			v.CodeRemainingSeconds = int64(left.Round(time.Second) / time.Second)
		}
	}
	return v
}
