package remotewrite

import (
	"github.com/kestrelmetrics/kestrel/log"
	"github.com/kestrelmetrics/kestrel/plugin"
	"github.com/pkg/errors"
)

// Factory builds remote-write Reporter plugin instances.
type Factory struct{}

// Type returns the plugin type.
func (f *Factory) Type() plugin.Type {
	return plugin.Metrics
}

// Name returns the name of the plugin implementation.
func (f *Factory) Name() string {
	return "remotewrite"
}

// ConfigType returns an empty config struct to be populated by the
// manager using mapstructure.
func (f *Factory) ConfigType() any {
	return &Config{}
}

// Setup initializes a reporter instance based on the decoded configuration.
func (f *Factory) Setup(cfgAny any) (plugin.Plugin, error) {
	cfg, ok := cfgAny.(*Config)
	if !ok {
		return nil, errors.Errorf("remotewrite setup: unexpected config type %T", cfgAny)
	}
	return NewReporter(cfg)
}

// Destroy stops a reporter instance created by this factory.
func (f *Factory) Destroy(p plugin.Plugin) {
	r, ok := p.(*Reporter)
	if !ok {
		log.Error().Str("plugin", p.FactoryName()).Msg("remotewrite destroy: unexpected plugin type")
		return
	}
	r.Stop()
}
