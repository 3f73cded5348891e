// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package observability

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rupfund/memberclient/configuration"
)

func Make(cfg *configuration.Configuration) *Observability {
	return &Observability{
		log:      makeLogger(cfg.Log),
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

func makeLogger(cfg configuration.Log) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("unknown log level %q, using %s", cfg.Level, logrus.InfoLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	out, err := output(cfg)
	if err != nil {
		log.Error(errors.Wrap(err, "failed to open log output, stderr is used"))
		out = os.Stderr
	}
	log.SetOutput(out)
	return log
}

func output(cfg configuration.Log) (io.Writer, error) {
	switch cfg.OutputType {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "file":
		return os.OpenFile(cfg.OutputParams, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}
	return nil, errors.Errorf("unknown output type %q", cfg.OutputType)
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts, labels ...string) *prometheus.CounterVec {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounterVec(opts, labels)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts, labels ...string) *prometheus.GaugeVec {
	o.mu.Lock()
	defer o.mu.Unlock()

	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGaugeVec(opts, labels)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}
