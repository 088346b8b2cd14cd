package enable

import (
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/require"
)

func TestDecodeHook(t *testing.T) {
	type config struct {
		Metrics Enable[serverConfig] `toml:"metrics"`
		Trace   Enable[serverConfig] `toml:"trace"`
		Name    string               `toml:"name"`
	}

	input := map[string]interface{}{
		"name": "node-1",
		"metrics": map[string]interface{}{
			"enable": true,
			"thing":  1,
			"other":  "Great",
		},
		// yaml.v2 hands loaders interface-keyed maps.
		"trace": map[interface{}]interface{}{
			"enable": false,
			"stale":  "ignored",
		},
	}

	var c config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "toml",
		Result:     &c,
		DecodeHook: DecodeHook(),
	})
	require.NoError(t, err)
	require.NoError(t, dec.Decode(input))

	require.Equal(t, "node-1", c.Name)
	require.True(t, c.Metrics.IsEnabled())
	inner, ok := c.Metrics.Inner()
	require.True(t, ok)
	require.Equal(t, serverConfig{Thing: 1, Other: "Great"}, inner)
	require.False(t, c.Trace.IsEnabled())
}

func TestDecodeHook_BadDiscriminator(t *testing.T) {
	type config struct {
		Metrics Enable[serverConfig] `toml:"metrics"`
	}

	var c config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "toml",
		Result:     &c,
		DecodeHook: DecodeHook(),
	})
	require.NoError(t, err)

	err = dec.Decode(map[string]interface{}{
		"metrics": map[string]interface{}{"enable": "yes"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a boolean")
}

func TestDecodeHook_PassThrough(t *testing.T) {
	// Values that are not sections, and sections fed something that is
	// not a map, must be left to mapstructure's normal handling.
	type config struct {
		Name string `toml:"name"`
	}

	var c config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "toml",
		Result:     &c,
		DecodeHook: DecodeHook(),
	})
	require.NoError(t, err)
	require.NoError(t, dec.Decode(map[string]interface{}{"name": "node-1"}))
	require.Equal(t, "node-1", c.Name)
}

func TestNormalizeKeys(t *testing.T) {
	m, err := normalizeKeys(map[interface{}]interface{}{"enable": true})
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"enable": true}, m)

	_, err = normalizeKeys(map[interface{}]interface{}{1: true})
	require.Error(t, err)

	m, err = normalizeKeys("not a map")
	require.NoError(t, err)
	require.Nil(t, m)
}
