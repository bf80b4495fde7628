package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// This is the global app config for the ledger. Proof difficulty is not part of it on purpose,
// it is a constant of the hashing rules.
type AppConfig struct {
	// How many goroutines search for a proof concurrently. 1 searches on the caller's goroutine.
	MINING_WORKERS int
	// Upper bound of proof candidates tried per block, 0 means unbounded.
	MAX_PROOF_ATTEMPTS uint64
	// One of debug, info, warn, error.
	LOG_LEVEL string
	// How many trailing blocks the show command renders by default.
	SHOW_DEPTH int
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		MINING_WORKERS:     1,
		MAX_PROOF_ATTEMPTS: 0,
		LOG_LEVEL:          "info",
		SHOW_DEPTH:         10,
	}
}

func (c AppConfig) Validate() error {
	if c.MINING_WORKERS < 1 {
		return errors.Errorf("mining_workers must be at least 1, got %d", c.MINING_WORKERS)
	}
	if c.SHOW_DEPTH < 0 {
		return errors.Errorf("show_depth must not be negative, got %d", c.SHOW_DEPTH)
	}
	switch c.LOG_LEVEL {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log_level %q", c.LOG_LEVEL)
	}
	return nil
}

// ParseAppConfig reads a YAML config at path. Keys missing from the file keep their default.
// An empty path returns the defaults.
func ParseAppConfig(path string) (AppConfig, error) {
	c := DefaultAppConfig()
	if path == "" {
		return c, nil
	}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return AppConfig{}, errors.Wrapf(err, "reading config %s", path)
	}
	if err := UnmarshalAppConfig(yamlFile, &c); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

func UnmarshalAppConfig(data []byte, c *AppConfig) error {
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return errors.Wrap(err, "unmarshalling config")
	}
	return c.Validate()
}
