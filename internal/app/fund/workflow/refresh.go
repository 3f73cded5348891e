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
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rupfund/memberclient/internal/app/fund"
)

// Refresh reads member, pot and pending compensation and swaps them in as
// one snapshot. On failure the previous snapshot stays in place. A refresh
// that finishes after a newer one never overwrites its snapshot or error.
func (c *Controller) Refresh(ctx context.Context) (fund.Snapshot, error) {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	snap, err := c.read(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.deps.Metrics.Refreshed(string(fund.KindOf(err)))
	if err != nil {
		if seq > c.appliedSeq && seq > c.errSeq {
			c.refreshErr = err
			c.errSeq = seq
		}
		c.log.WithError(err).Warn("refresh failed, keeping previous snapshot")
		if c.snapshot == nil {
			return fund.Snapshot{}, err
		}
		return *c.snapshot, err
	}
	if seq > c.appliedSeq {
		c.snapshot = &snap
		c.appliedSeq = seq
		// A newer refresh that already failed keeps its error.
		if seq > c.errSeq {
			c.refreshErr = nil
		}
	}
	return *c.snapshot, nil
}

// Snapshot returns the last applied snapshot, false before the first successful refresh.
func (c *Controller) Snapshot() (fund.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return fund.Snapshot{}, false
	}
	return *c.snapshot, true
}

func (c *Controller) read(ctx context.Context) (fund.Snapshot, error) {
	var (
		member  fund.MemberRecord
		pot     decimal.Decimal
		period  fund.Period
		pending decimal.Decimal
	)
	gw := c.deps.Gateway
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer c.deps.Metrics.Since("read_member", time.Now())
		m, err := gw.ReadMember(gctx, c.account)
		if err != nil {
			return errors.Wrap(err, "read member")
		}
		member = m
		return nil
	})
	g.Go(func() error {
		defer c.deps.Metrics.Since("read_pot", time.Now())
		p, err := gw.ReadPot(gctx)
		if err != nil {
			return errors.Wrap(err, "read pot")
		}
		pot = p
		return nil
	})
	g.Go(func() error {
		defer c.deps.Metrics.Since("read_compensation", time.Now())
		p, err := gw.ReadCurrentPeriod(gctx)
		if err != nil {
			return errors.Wrap(err, "read current period")
		}
		v, err := gw.ReadPendingCompensation(gctx, p, c.account)
		if err != nil {
			return errors.Wrapf(err, "read pending compensation for period %d", p)
		}
		period, pending = p, v
		return nil
	})
	if err := g.Wait(); err != nil {
		return fund.Snapshot{}, err
	}

	return fund.Snapshot{
		Member:              member,
		Pot:                 pot,
		Period:              period,
		PendingCompensation: pending,
		RefreshedAt:         c.deps.Clock.Now(),
	}, nil
}
