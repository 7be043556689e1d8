package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avnegotiate/internal/negotiate"
)

func quality(v float64) *float64 {
	return &v
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "format", cfg.Negotiate.Parameter)
	assert.Contains(t, cfg.Negotiate.Formats, DefaultFormatKey)
	require.NoError(t, cfg.Validate())
}

func TestNegotiateConfig_BuildTable(t *testing.T) {
	t.Parallel()

	nc := NegotiateConfig{
		Formats: map[string]FormatConfig{
			DefaultFormatKey: {Charset: "utf-8", Quality: quality(0.5)},
			"xml":            {MediaType: "application/xml"},
			"html":           {MediaType: "text/html", Language: "en"},
		},
	}

	table, err := nc.BuildTable()
	require.NoError(t, err)

	// The reserved key becomes the defaults entry, not a named format.
	assert.NotContains(t, table.Named, DefaultFormatKey)
	assert.Len(t, table.Named, 2)
	assert.Equal(t, "utf-8", table.Defaults.Charset)

	eff, ok := table.About("xml")
	require.True(t, ok)
	assert.Equal(t, "utf-8", eff.Charset)
	assert.InDelta(t, 0.5, *eff.Quality, 1e-9)
}

func TestNegotiateConfig_BuildTable_MissingFormats(t *testing.T) {
	t.Parallel()

	nc := NegotiateConfig{}

	_, err := nc.BuildTable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negotiate.formats")
}

func TestNegotiateConfig_BuildTable_UnresolvableMediaType(t *testing.T) {
	t.Parallel()

	nc := NegotiateConfig{
		Formats: map[string]FormatConfig{
			DefaultFormatKey: {Charset: "utf-8"},
			"xml":            {MediaType: "application/xml"},
			"atom":           {},
		},
	}

	_, err := nc.BuildTable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formats.atom")
}

func TestNegotiateConfig_BuildTable_DefaultsOnly(t *testing.T) {
	t.Parallel()

	nc := NegotiateConfig{
		Formats: map[string]FormatConfig{
			DefaultFormatKey: {MediaType: "text/plain"},
		},
	}

	table, err := nc.BuildTable()
	require.NoError(t, err)
	assert.Empty(t, table.Named)
}

func TestNegotiateConfig_Validate_ExtensionMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		extension string
		wantErr   bool
	}{
		{"", false},
		{"strip", false},
		{"keep", false},
		{"truncate", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("mode "+tt.extension, func(t *testing.T) {
			t.Parallel()

			nc := NegotiateConfig{
				Extension: tt.extension,
				Formats: map[string]FormatConfig{
					"xml": {MediaType: "application/xml"},
				},
			}

			err := nc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, negotiate.ExtensionMode(tt.extension), nc.ExtensionMode())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("missing server address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Server.Address = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.address")
	})

	t.Run("metrics enabled without address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Metrics.Address = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics.address")
	})
}
