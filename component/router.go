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
	"net/http"

	echoPrometheus "github.com/globocom/echo-prometheus"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rupfund/memberclient/configuration"
	"github.com/rupfund/memberclient/internal/app/api"
	"github.com/rupfund/memberclient/observability"
)

func NewRouter(cfg *configuration.Configuration, obs *observability.Observability, f *Fund) (*Router, error) {
	registry, err := api.NewRegistry(cfg.API.SessionCacheSize, f.Controller, obs.Log())
	if err != nil {
		return nil, err
	}
	gatherer := prometheus.Gatherers{obs.Metrics(), prometheus.DefaultGatherer}
	e := api.NewServer(api.NewMemberServer(registry, obs.Log()), gatherer, obs.Log())
	e.Use(echoPrometheus.MetricsMiddleware())
	return &Router{
		e:      e,
		listen: cfg.API.Listen,
		obs:    obs,
	}, nil
}

type Router struct {
	e      *echo.Echo
	listen string
	obs    *observability.Observability
}

func (r *Router) Start() {
	log := r.obs.Log()
	go func() {
		log.Infof("listening on %s", r.listen)
		err := r.e.Start(r.listen)
		if err != http.ErrServerClosed {
			log.Error(errors.Wrapf(err, "http server ListenAndServe"))
		}
	}()
}

func (r *Router) Stop(ctx context.Context) {
	log := r.obs.Log()

	if err := r.e.Shutdown(ctx); err != nil {
		log.Error(errors.Wrapf(err, "http server shutdown"))
	}
}
