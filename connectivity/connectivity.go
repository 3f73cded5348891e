// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package connectivity

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/internal/dbconn"
	"github.com/rupfund/memberclient/internal/pkg/cycle"
	"github.com/rupfund/memberclient/observability"
)

// Make opens the ledger node client and, when enabled, the database pool.
// Neither is contacted until Ping.
func Make(cfg *configuration.Configuration, obs *observability.Observability) (*Connectivity, error) {
	log := obs.Log()
	c := &Connectivity{cfg: cfg, log: log}

	log.Infof("connecting to ledger node %s", configuration.MaskURL(cfg.Ledger.URL))
	eth, err := ethclient.Dial(cfg.Ledger.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial ledger node")
	}
	c.eth = eth

	if cfg.DB.Enabled {
		db, err := dbconn.Connect(cfg.DB)
		if err != nil {
			eth.Close()
			return nil, err
		}
		c.pg = db
	}
	return c, nil
}

type Connectivity struct {
	cfg *configuration.Configuration
	log logrus.FieldLogger
	pg  *pg.DB
	eth *ethclient.Client
}

// PG is nil when the database is disabled.
func (c *Connectivity) PG() *pg.DB {
	return c.pg
}

func (c *Connectivity) Ledger() *ethclient.Client {
	return c.eth
}

// Ping waits for the ledger node and the database to answer, retrying
// connection errors as configured.
func (c *Connectivity) Ping(ctx context.Context) error {
	var chainID *big.Int
	err := cycle.UntilConnectionError(func() error {
		var err error
		chainID, err = c.eth.ChainID(ctx)
		return err
	}, c.cfg.Ledger.AttemptInterval, c.cfg.Ledger.Attempts, c.log)
	if err != nil {
		return errors.Wrap(err, "ledger node is not reachable")
	}
	if chainID.Int64() != c.cfg.Ledger.ChainID {
		return errors.Errorf("ledger node serves chain %s, configured %d", chainID, c.cfg.Ledger.ChainID)
	}

	if c.pg == nil {
		return nil
	}
	err = cycle.UntilConnectionError(func() error {
		_, err := c.pg.WithContext(ctx).Exec("select 1")
		return err
	}, c.cfg.DB.AttemptInterval, c.cfg.DB.Attempts, c.log)
	return errors.Wrap(err, "database is not reachable")
}

func (c *Connectivity) Close() {
	c.eth.Close()
	if c.pg != nil {
		if err := c.pg.Close(); err != nil {
			c.log.WithError(err).Error("failed to close database")
		}
	}
}
