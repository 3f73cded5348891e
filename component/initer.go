// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package component

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/connectivity"
	"github.com/rupfund/memberclient/internal/app/fund"
	"github.com/rupfund/memberclient/internal/app/fund/ethereum"
	"github.com/rupfund/memberclient/internal/app/fund/kafka"
	"github.com/rupfund/memberclient/internal/app/fund/memory"
	"github.com/rupfund/memberclient/internal/app/fund/postgres"
	"github.com/rupfund/memberclient/internal/app/fund/workflow"
	"github.com/rupfund/memberclient/internal/pkg/ratelimiter"
	"github.com/rupfund/memberclient/observability"
)

const memoryJournalSize = 10000

// Fund holds the collaborators shared by every member controller.
type Fund struct {
	cfg     *configuration.Configuration
	log     logrus.FieldLogger
	gateway *ethereum.Gateway
	journal fund.Journal
	events  *kafka.Publisher
	limiter *ratelimiter.MapLimiter
	metrics *observability.FlowMetrics
}

func MakeFund(cfg *configuration.Configuration, obs *observability.Observability, conn *connectivity.Connectivity) (*Fund, error) {
	log := obs.Log()
	gateway, err := ethereum.NewGateway(conn.Ledger(), cfg.Ledger, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind fund contract")
	}

	f := &Fund{
		cfg:     cfg,
		log:     log,
		gateway: gateway,
		limiter: ratelimiter.New(cfg.Flow.ChallengeRate, cfg.Flow.ChallengeBurst, cfg.Flow.ChallengeIdleTTL),
		metrics: observability.MakeFlowMetrics(obs),
	}
	if db := conn.PG(); db != nil {
		f.journal = postgres.NewJournalStorage(obs, db)
	} else {
		log.Warn("database is disabled, journal is kept in memory")
		f.journal = memory.NewJournal(memoryJournalSize)
	}
	if cfg.Events.Enabled {
		f.events = kafka.NewPublisher(cfg.Events)
	}
	return f, nil
}

// Accounts lists the members this client holds signing keys for.
func (f *Fund) Accounts() []fund.Account {
	return f.gateway.Accounts()
}

// Controller builds a controller for account on top of the shared collaborators.
func (f *Fund) Controller(account fund.Account) *workflow.Controller {
	deps := workflow.Deps{
		Gateway: f.gateway,
		Journal: f.journal,
		Limiter: f.limiter,
		Metrics: f.metrics,
		Log:     f.log,
		CodeTTL: f.cfg.Flow.CodeTTL,
	}
	if f.events != nil {
		deps.Events = f.events
	}
	return workflow.NewController(account, deps)
}

func (f *Fund) Close() error {
	if f.events == nil {
		return nil
	}
	return errors.Wrap(f.events.Close(), "failed to close event publisher")
}
