// Package plugin provides the factory/manager machinery used to configure
// and assemble optional components such as metric reporters.
package plugin

// Type is the type of plugin supported by the system.
type Type string

const (
	// Metrics is the plugin type for metric reporter backends.
	Metrics Type = "metrics"
)

// Factory is the interface for plugin factories.
type Factory interface {
	// Type returns the plugin type.
	Type() Type
	// Name returns the name of the plugin implementation.
	Name() string
	// ConfigType returns an empty struct that represents the plugin's
	// configuration. It will be populated by the manager using
	// mapstructure.
	ConfigType() any
	// Setup initializes a plugin instance based on the configuration.
	Setup(any) (Plugin, error)
	// Destroy tears down an instance previously created by Setup.
	Destroy(Plugin)
}

// Plugin is an initialized plugin instance.
type Plugin interface {
	FactoryName() string
}
