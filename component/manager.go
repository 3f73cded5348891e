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

package component

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/connectivity"
	"github.com/rupfund/memberclient/observability"
)

const shutdownTimeout = 15 * time.Second

type Manager struct {
	cfg    *configuration.Configuration
	log    *logrus.Logger
	conn   *connectivity.Connectivity
	router *Router
	stop   func(context.Context)
}

// Prepare loads the configuration and builds every component of the member API.
func Prepare() *Manager {
	boot := logrus.New()
	cfg := configuration.Load(boot)
	obs := observability.Make(cfg)
	log := obs.Log()

	conn, err := connectivity.Make(cfg, obs)
	if err != nil {
		log.Fatal(err)
	}
	f, err := MakeFund(cfg, obs, conn)
	if err != nil {
		log.Fatal(err)
	}
	router, err := NewRouter(cfg, obs, f)
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to build router"))
	}
	return &Manager{
		cfg:    cfg,
		log:    log,
		conn:   conn,
		router: router,
		stop:   makeStopper(obs, conn, f, router),
	}
}

func (m *Manager) Start() {
	if err := m.conn.Ping(context.Background()); err != nil {
		m.log.Fatal(err)
	}
	m.router.Start()
}

func (m *Manager) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	m.stop(ctx)
	m.log.Info("stopped")
}
