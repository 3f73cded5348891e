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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rupfund/memberclient/component"
	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/connectivity"
	"github.com/rupfund/memberclient/internal/app/cli"
	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/ethereum"
	"github.com/rupfund/memberclient/observability"
)

var account string

func main() {
	root := &cobra.Command{
		Use:           "member",
		Short:         "Mutual-aid fund member client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&account, "account", "", "member address (defaults to the only configured key)")

	var amount string
	contribute := &cobra.Command{
		Use:   "contribute",
		Short: "Contribute to the pot, confirmed with a one-time code",
		RunE: withSession(func(ctx context.Context, s *cli.Session) error {
			value, err := fund.ParseAmount(amount)
			if err != nil {
				return err
			}
			return s.Contribute(ctx, value)
		}),
	}
	contribute.Flags().StringVar(&amount, "amount", "", "amount of RUP")
	_ = contribute.MarkFlagRequired("amount")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recent ledger writes",
		RunE: withSession(func(ctx context.Context, s *cli.Session) error {
			if err := fund.CheckHistoryLimit(limit); err != nil {
				return err
			}
			return s.History(ctx, limit)
		}),
	}
	history.Flags().IntVar(&limit, "limit", 20, "number of entries")

	root.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show member record, pot and pending compensation",
			RunE: withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Show(ctx)
			}),
		},
		contribute,
		&cobra.Command{
			Use:   "payout",
			Short: "Claim the pending compensation, confirmed with a one-time code",
			RunE: withSession(func(ctx context.Context, s *cli.Session) error {
				return s.Payout(ctx)
			}),
		},
		history,
	)

	if err := root.Execute(); err != nil {
		logrus.Errorf("%s: %v", fund.KindOf(err), err)
		os.Exit(1)
	}
}

func withSession(run func(context.Context, *cli.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		boot := logrus.New()
		boot.SetLevel(logrus.WarnLevel)
		cfg := configuration.Load(boot)
		obs := observability.Make(cfg)

		conn, err := connectivity.Make(cfg, obs)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := conn.Ping(ctx); err != nil {
			return err
		}
		f, err := component.MakeFund(cfg, obs, conn)
		if err != nil {
			return err
		}
		defer f.Close()

		member, err := pickAccount(account, f.Accounts())
		if err != nil {
			return err
		}
		return run(ctx, cli.NewSession(f.Controller(member), os.Stdin, cmd.OutOrStdout()))
	}
}

// pickAccount returns the checksummed form of raw, or the only signing
// key when raw is empty.
func pickAccount(raw string, known []fund.Account) (fund.Account, error) {
	if raw != "" {
		return ethereum.ParseAccount(raw)
	}
	if len(known) != 1 {
		return "", errors.Errorf("--account is required, %d signing keys are configured", len(known))
	}
	return known[0], nil
}
