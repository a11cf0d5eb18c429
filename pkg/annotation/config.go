/*
 * Copyright 2026 The Margin Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package annotation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the configuration of one annotation engine instance.
type Config struct {
	// DocumentID keys the comment log in storage.
	DocumentID string `yaml:"documentId"`

	// TrackingEnabled is the initial state of track changes.
	TrackingEnabled bool `yaml:"trackingEnabled"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		DocumentID:      "main",
		TrackingEnabled: true,
	}
}

// ConfigFromFile returns a Config loaded from the given YAML file, with
// defaults for absent keys.
func ConfigFromFile(path string) (*Config, error) {
	conf := NewConfig()

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	return conf, nil
}

// ensureDefaults fills zero values that have non-zero defaults.
func (c *Config) ensureDefaults() {
	if c.DocumentID == "" {
		c.DocumentID = "main"
	}
}
