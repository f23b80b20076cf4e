package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRouteConfig reads a YAML route file and overlays it on
// DefaultRouteConfig. Keys absent from the file keep their defaults; list
// keys (stops, rush_windows) replace the default list wholesale.
// Unknown keys are rejected so typos surface as errors.
func LoadRouteConfig(path string) (RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RouteConfig{}, fmt.Errorf("reading route config: %w", err)
	}
	return ParseRouteConfig(data)
}

// ParseRouteConfig decodes YAML route data over the defaults and validates
// the result.
func ParseRouteConfig(data []byte) (RouteConfig, error) {
	cfg := DefaultRouteConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RouteConfig{}, fmt.Errorf("parsing route config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RouteConfig{}, fmt.Errorf("invalid route config: %w", err)
	}
	return cfg, nil
}
