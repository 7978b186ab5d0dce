// Package prometheus registers the Prometheus reporter as a metrics
// plugin so it can be configured through the plugin manager.
package prometheus

import (
	"github.com/kestrelmetrics/kestrel/log"
	"github.com/kestrelmetrics/kestrel/metrics"
	"github.com/kestrelmetrics/kestrel/plugin"
	"github.com/pkg/errors"
)

// Factory builds PrometheusReporter plugin instances.
type Factory struct{}

// Type returns the plugin type.
func (f *Factory) Type() plugin.Type {
	return plugin.Metrics
}

// Name returns the name of the plugin implementation.
func (f *Factory) Name() string {
	return "prometheus"
}

// ConfigType returns an empty config struct to be populated by the
// manager using mapstructure.
func (f *Factory) ConfigType() any {
	return &metrics.PrometheusReporterConfig{}
}

// Setup initializes a reporter instance based on the decoded configuration.
func (f *Factory) Setup(cfgAny any) (plugin.Plugin, error) {
	cfg, ok := cfgAny.(*metrics.PrometheusReporterConfig)
	if !ok {
		return nil, errors.Errorf("prometheus setup: unexpected config type %T", cfgAny)
	}

	return metrics.NewPrometheusReporter(cfg)
}

// Destroy stops a reporter instance created by this factory.
func (f *Factory) Destroy(p plugin.Plugin) {
	prom, ok := p.(*metrics.PrometheusReporter)
	if !ok {
		log.Error().Str("plugin", p.FactoryName()).Msg("prometheus destroy: unexpected plugin type")
		return
	}

	prom.Stop()
}
