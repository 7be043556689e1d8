package config

import (
	"fmt"
	"time"

	"github.com/vyrodovalexey/avnegotiate/internal/negotiate"
	"github.com/vyrodovalexey/avnegotiate/internal/util"
)

// DefaultFormatKey is the reserved key in the formats mapping that holds
// attribute defaults inherited by every named format.
const DefaultFormatKey = "_"

// Config is the root configuration for the negotiation gateway.
type Config struct {
	// Server holds HTTP server settings.
	Server ServerConfig `yaml:"server" json:"server"`

	// Metrics holds Prometheus metrics endpoint settings.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging holds logging settings.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Negotiate holds content negotiation settings.
	Negotiate NegotiateConfig `yaml:"negotiate" json:"negotiate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" json:"address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// IdleTimeout is the maximum idle time for keep-alive connections.
	IdleTimeout Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	// Enabled turns the metrics listener on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Address is the metrics listen address, e.g. ":9090".
	Address string `yaml:"address,omitempty" json:"address,omitempty"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn or error.
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// Format is the log encoding: json or console.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Output is the log destination: stdout or stderr.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// NegotiateConfig holds content negotiation settings.
type NegotiateConfig struct {
	// Parameter names the query parameter for explicit format selection.
	// Empty disables the parameter rule.
	Parameter string `yaml:"parameter,omitempty" json:"parameter,omitempty"`

	// Extension controls path-extension selection: "" (off), "strip" or
	// "keep".
	Extension string `yaml:"extension,omitempty" json:"extension,omitempty"`

	// ExplicitOnly disables header-based negotiation.
	ExplicitOnly bool `yaml:"explicitOnly,omitempty" json:"explicitOnly,omitempty"`

	// Formats maps format names to their attributes. The reserved "_"
	// entry supplies inherited defaults. The mapping is mandatory.
	Formats map[string]FormatConfig `yaml:"formats" json:"formats"`
}

// FormatConfig holds the attributes of one format entry.
type FormatConfig struct {
	// MediaType is the format's media type, e.g. "application/xml".
	MediaType string `yaml:"mediaType,omitempty" json:"mediaType,omitempty"`

	// Charset is the format's character set, e.g. "utf-8".
	Charset string `yaml:"charset,omitempty" json:"charset,omitempty"`

	// Language is the format's content language, e.g. "en".
	Language string `yaml:"language,omitempty" json:"language,omitempty"`

	// Encoding is the format's content coding.
	Encoding string `yaml:"encoding,omitempty" json:"encoding,omitempty"`

	// Quality is the format's source quality factor. Unset inherits the
	// defaults entry's value, which itself defaults to 1.0.
	Quality *float64 `yaml:"quality,omitempty" json:"quality,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(120 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Negotiate: NegotiateConfig{
			Parameter: "format",
			Extension: string(negotiate.ExtensionStrip),
			Formats: map[string]FormatConfig{
				DefaultFormatKey: {Charset: "utf-8"},
				"html":           {MediaType: "text/html"},
				"json":           {MediaType: "application/json"},
				"xml":            {MediaType: "application/xml"},
			},
		},
	}
}

// applyDefaults fills unset server, metrics and logging fields with
// their default values. The negotiate section is left exactly as given:
// the format table is the operator's contract and is never silently
// augmented.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = def.Server.IdleTimeout
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			c.Metrics.Address = def.Metrics.Address
		}
		if c.Metrics.Path == "" {
			c.Metrics.Path = def.Metrics.Path
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return util.NewConfigError("server.address", "listen address is required")
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return util.NewConfigError("metrics.address", "listen address is required when metrics are enabled")
	}
	return c.Negotiate.Validate()
}

// Validate checks the negotiation settings. Building the table applies
// the media type inheritance invariant.
func (nc *NegotiateConfig) Validate() error {
	switch nc.Extension {
	case "", string(negotiate.ExtensionStrip), string(negotiate.ExtensionKeep):
	default:
		return util.NewConfigError("negotiate.extension",
			fmt.Sprintf("unknown extension mode %q", nc.Extension))
	}

	_, err := nc.BuildTable()
	return err
}

// ExtensionMode returns the configured extension mode.
func (nc *NegotiateConfig) ExtensionMode() negotiate.ExtensionMode {
	return negotiate.ExtensionMode(nc.Extension)
}

// BuildTable converts the formats mapping into a negotiation table,
// splitting the reserved "_" entry into the table defaults. The mapping
// must contain at least one entry; every named entry must have a media
// type of its own or inherited from the defaults.
func (nc *NegotiateConfig) BuildTable() (*negotiate.Table, error) {
	if len(nc.Formats) == 0 {
		return nil, util.NewConfigError("negotiate.formats", "format table is required")
	}

	table := &negotiate.Table{
		Named: make(map[string]negotiate.Format, len(nc.Formats)),
	}
	for name, fc := range nc.Formats {
		if name == DefaultFormatKey {
			table.Defaults = fc.format()
			continue
		}
		table.Named[name] = fc.format()
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// format converts a FormatConfig into a negotiate.Format.
func (fc FormatConfig) format() negotiate.Format {
	return negotiate.Format{
		MediaType: fc.MediaType,
		Charset:   fc.Charset,
		Language:  fc.Language,
		Encoding:  fc.Encoding,
		Quality:   fc.Quality,
	}
}
