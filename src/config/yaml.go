// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// loadYAML overlays the file at path onto cfg. Unknown keys are rejected so
// typos surface at startup instead of silently keeping a default.
func loadYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}
