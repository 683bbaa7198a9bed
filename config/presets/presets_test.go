package presets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	require.Equal(t, []string{"fast", "full", "standard"}, Options())
	for _, name := range Options() {
		t.Run(name, func(t *testing.T) {
			conf, err := Get(name)
			require.NoError(t, err)
			conf.Source.URL = "http://source:8983/solr"
			conf.Target.URL = "http://localhost:8984/solr"
			require.NoError(t, conf.Validate())
		})
	}
}

func TestUnknownPreset(t *testing.T) {
	_, err := Get("mainnet")
	require.ErrorContains(t, err, "not found")
}
