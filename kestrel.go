// Package kestrel assembles the metrics-instrumentation library: logger,
// plugin manager and the built-in reporter backends.
package kestrel

import (
	"github.com/kestrelmetrics/kestrel/config"
	"github.com/kestrelmetrics/kestrel/log"
	"github.com/kestrelmetrics/kestrel/metrics"
	"github.com/kestrelmetrics/kestrel/metrics/prometheus"
	"github.com/kestrelmetrics/kestrel/metrics/remotewrite"
	"github.com/kestrelmetrics/kestrel/plugin"
)

// Kestrel is the core application struct, holding the major library
// components.
type Kestrel struct {
	Logger        log.Logger
	PluginManager *plugin.Manager
}

// NewKestrel creates a Kestrel instance with a default configuration.
func NewKestrel() (*Kestrel, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewKestrelWithConfig(cfg)
}

// NewKestrelWithConfig creates a Kestrel instance from cfg. It initializes
// the logger, registers the built-in reporter factories, sets up the
// configured plugins and wires the resulting reporters into the metrics
// fan-out.
func NewKestrelWithConfig(cfg *config.Config) (*Kestrel, error) {
	if err := log.Initialize(cfg.LogCfg()); err != nil {
		return nil, err
	}
	logger := log.NewLogger(cfg.LogCfg())

	pluginManager := plugin.NewManager()
	pluginManager.RegisterFactory(&prometheus.Factory{})
	pluginManager.RegisterFactory(&remotewrite.Factory{})

	if len(cfg.Plugin) > 0 {
		if err := pluginManager.SetupPlugins(cfg.Plugin); err != nil {
			return nil, err
		}
	}

	var reporters []metrics.Reporter
	for _, p := range pluginManager.GetPluginsByType(plugin.Metrics) {
		if r, ok := p.(metrics.Reporter); ok {
			reporters = append(reporters, r)
		}
	}
	metrics.SetMetricsReporters(reporters)

	k := &Kestrel{
		Logger:        logger,
		PluginManager: pluginManager,
	}

	logger.Info().Msg("kestrel initialized")
	return k, nil
}

// Stop gracefully shuts down the library: expiration workers first so no
// reporter receives records after its teardown, then the plugins.
func (k *Kestrel) Stop() {
	k.Logger.Info().Msg("kestrel shutting down")
	metrics.StopDecayingMaxGauges()
	k.PluginManager.DestroyPlugins()
	log.Close()
}
