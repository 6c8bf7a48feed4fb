package main

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type config struct {
	Pipeline string         `koanf:"pipeline"`
	Input    string         `koanf:"input"`
	Output   string         `koanf:"output"`
	Registry registryConfig `koanf:"registry"`
	Log      logConfig      `koanf:"log"`
}

type registryConfig struct {
	Path    string `koanf:"path"`
	Name    string `koanf:"name"`
	Version int    `koanf:"version"`
}

type logConfig struct {
	Level string `koanf:"level"`
}

// loadConfig layers an optional yaml file under MLPIPE_* environment
// variables, so MLPIPE_REGISTRY_PATH overrides registry.path.
func loadConfig(path string) (*config, error) {
	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load config file %s", path)
		}
	}

	err := k.Load(env.Provider("MLPIPE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MLPIPE_")), "_", ".", -1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load environment")
	}

	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}

	var cfg config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal config")
	}

	return &cfg, nil
}
