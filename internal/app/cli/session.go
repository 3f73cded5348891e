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

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/workflow"
)

// Session runs the member flows in a terminal.
type Session struct {
	ctl *workflow.Controller
	in  *bufio.Scanner
	out io.Writer
}

func NewSession(ctl *workflow.Controller, in io.Reader, out io.Writer) *Session {
	return &Session{ctl: ctl, in: bufio.NewScanner(in), out: out}
}

// Show refreshes and prints the member page.
func (s *Session) Show(ctx context.Context) error {
	if _, err := s.ctl.Refresh(ctx); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Session) Contribute(ctx context.Context, amount decimal.Decimal) error {
	if _, err := s.ctl.StartContribution(ctx, amount); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "A one-time code for a contribution of %s RUP was sent.\n", amount)
	return s.verify(fund.ActionContribution, func(code string) (fund.Receipt, error) {
		return s.ctl.SubmitContribution(ctx, code, amount)
	}, s.ctl.CancelContribution)
}

func (s *Session) Payout(ctx context.Context) error {
	if _, err := s.ctl.StartPayout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "A one-time code for the payout was sent.")
	return s.verify(fund.ActionPayout, func(code string) (fund.Receipt, error) {
		return s.ctl.SubmitPayout(ctx, code)
	}, s.ctl.CancelPayout)
}

func (s *Session) History(ctx context.Context, limit int) error {
	entries, err := s.ctl.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No ledger writes yet.")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tFLOW\tSTEP\tAMOUNT\tTX\tRESULT")
	for _, e := range entries {
		result := "ok"
		if !e.Succeeded() {
			result = string(e.ErrorKind)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			fund.FormatOnboarding(e.CreatedAt), e.Action, e.Step, e.Amount, e.TxID, result)
	}
	return w.Flush()
}

// verify asks for codes until the ledger accepts one, the flow leaves
// AwaitingCode or the member enters an empty line.
func (s *Session) verify(action fund.Action, submit func(string) (fund.Receipt, error), cancel func() error) error {
	for {
		s.countdown(action)
		code, ok := s.prompt("Enter the code (empty line cancels): ")
		if !ok || code == "" {
			if err := cancel(); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "Cancelled.")
			return nil
		}

		receipt, err := submit(code)
		if err == nil {
			fmt.Fprintf(s.out, "Settled in transaction %s.\n", receipt.TxID)
			s.render()
			return nil
		}
		if s.ctl.Phase(action) != fund.PhaseAwaitingCode {
			return err
		}
		fmt.Fprintf(s.out, "%s: %v\n", fund.KindOf(err), err)
	}
}

func (s *Session) countdown(action fund.Action) {
	v := s.ctl.View()
	f := v.Contribution
	if action == fund.ActionPayout {
		f = v.Payout
	}
	if f.CodeExpiresAt != nil {
		fmt.Fprintf(s.out, "The code is valid for about %ds.\n", f.CodeRemainingSeconds)
	}
}

func (s *Session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) render() {
	v := s.ctl.View()
	if v.Snapshot == nil {
		fmt.Fprintln(s.out, "No member data loaded.")
		return
	}
	snap := v.Snapshot
	m := snap.Member
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Member:\t%s (%s) (group %s)\n", m.Name, m.Village, m.GroupID)
	fmt.Fprintf(w, "Onboarded:\t%s\n", fund.FormatOnboarding(m.OnboardedAt))
	fmt.Fprintf(w, "Merit:\t%s\n", m.Merit)
	fmt.Fprintf(w, "Contribution:\t%s\n", snap.ContributionShare())
	fmt.Fprintf(w, "Pending payout:\t%s RUP (period %d)\n", snap.PendingCompensation, snap.Period)
	_ = w.Flush()
	if v.RefreshError != nil {
		fmt.Fprintf(s.out, "Data may be stale: %s\n", v.RefreshError.Message)
	}
}
