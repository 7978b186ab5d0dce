package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfig struct {
	Tag      string `mapstructure:"tag"`
	Endpoint string `mapstructure:"endpoint"`
}

type mockPlugin struct {
	factoryName string
	cfg         *mockConfig
	destroyed   bool
}

func (p *mockPlugin) FactoryName() string { return p.factoryName }

type mockFactory struct {
	name     string
	setupErr error
	setups   int
	destroys int
}

func (f *mockFactory) Type() Type      { return Metrics }
func (f *mockFactory) Name() string    { return f.name }
func (f *mockFactory) ConfigType() any { return &mockConfig{} }

func (f *mockFactory) Setup(c any) (Plugin, error) {
	f.setups++
	if f.setupErr != nil {
		return nil, f.setupErr
	}
	return &mockPlugin{factoryName: f.name, cfg: c.(*mockConfig)}, nil
}

func (f *mockFactory) Destroy(p Plugin) {
	f.destroys++
	p.(*mockPlugin).destroyed = true
}

func TestSetupPlugins(t *testing.T) {
	m := NewManager()
	f := &mockFactory{name: "mock"}
	m.RegisterFactory(f)

	conf := map[string]any{
		"metrics": map[string]any{
			"mock": map[string]any{
				"endpoint": "http://127.0.0.1:9090",
			},
		},
	}
	require.NoError(t, m.SetupPlugins(conf))
	assert.Equal(t, 1, f.setups)

	p, err := m.GetPlugin(Metrics, "mock")
	require.NoError(t, err)
	mp := p.(*mockPlugin)
	assert.Equal(t, "mock", mp.FactoryName())
	assert.Equal(t, "http://127.0.0.1:9090", mp.cfg.Endpoint)
}

func TestSetupPluginsTagKeying(t *testing.T) {
	m := NewManager()
	m.RegisterFactory(&mockFactory{name: "mock"})

	conf := map[string]any{
		"metrics": map[string]any{
			"mock": map[string]any{
				"tag":      "default",
				"endpoint": "http://a",
			},
		},
	}
	require.NoError(t, m.SetupPlugins(conf))

	// The tag replaces the factory name as the instance key.
	p, err := m.GetDefaultPlugin(Metrics)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.FactoryName())

	_, err = m.GetPlugin(Metrics, "mock")
	assert.ErrorIs(t, err, ErrPluginNotFound)
}

func TestSetupPluginsErrors(t *testing.T) {
	t.Run("UnknownFactory", func(t *testing.T) {
		m := NewManager()
		m.RegisterFactory(&mockFactory{name: "mock"})
		conf := map[string]any{
			"metrics": map[string]any{
				"missing": map[string]any{},
			},
		}
		assert.ErrorIs(t, m.SetupPlugins(conf), ErrPluginNotFound)
	})

	t.Run("UnknownTypeIgnored", func(t *testing.T) {
		m := NewManager()
		conf := map[string]any{
			"transport": map[string]any{
				"anything": map[string]any{},
			},
		}
		assert.NoError(t, m.SetupPlugins(conf))
	})

	t.Run("MalformedSection", func(t *testing.T) {
		m := NewManager()
		m.RegisterFactory(&mockFactory{name: "mock"})
		conf := map[string]any{
			"metrics": "not a map",
		}
		assert.ErrorIs(t, m.SetupPlugins(conf), ErrInvalidConfigFormat)
	})

	t.Run("MalformedInstanceConfig", func(t *testing.T) {
		m := NewManager()
		m.RegisterFactory(&mockFactory{name: "mock"})
		conf := map[string]any{
			"metrics": map[string]any{
				"mock": []any{"not", "a", "map"},
			},
		}
		assert.ErrorIs(t, m.SetupPlugins(conf), ErrInvalidConfigFormat)
	})

	t.Run("SetupFailure", func(t *testing.T) {
		m := NewManager()
		m.RegisterFactory(&mockFactory{name: "mock", setupErr: errors.New("backend unreachable")})
		conf := map[string]any{
			"metrics": map[string]any{
				"mock": map[string]any{},
			},
		}
		assert.ErrorIs(t, m.SetupPlugins(conf), ErrFactorySetup)
	})
}

func TestGetPluginNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.GetPlugin(Metrics, "nope")
	assert.ErrorIs(t, err, ErrPluginNotFound)
}

func TestGetPluginsByType(t *testing.T) {
	m := NewManager()
	m.RegisterFactory(&mockFactory{name: "alpha"})
	m.RegisterFactory(&mockFactory{name: "beta"})

	conf := map[string]any{
		"metrics": map[string]any{
			"alpha": map[string]any{},
			"beta":  map[string]any{},
		},
	}
	require.NoError(t, m.SetupPlugins(conf))

	assert.Len(t, m.GetPluginsByType(Metrics), 2)
	assert.Empty(t, m.GetPluginsByType(Type("transport")))
}

func TestDestroyPlugins(t *testing.T) {
	m := NewManager()
	f := &mockFactory{name: "mock"}
	m.RegisterFactory(f)

	conf := map[string]any{
		"metrics": map[string]any{
			"mock": map[string]any{},
		},
	}
	require.NoError(t, m.SetupPlugins(conf))

	p, err := m.GetPlugin(Metrics, "mock")
	require.NoError(t, err)

	m.DestroyPlugins()
	assert.Equal(t, 1, f.destroys)
	assert.True(t, p.(*mockPlugin).destroyed)

	_, err = m.GetPlugin(Metrics, "mock")
	assert.ErrorIs(t, err, ErrPluginNotFound)
}
