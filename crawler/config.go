// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crawler

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the crawl configuration, decodable from a TOML file; CLI
// flags override file values field by field.
type Config struct {
	// Roots are the open-directory URLs to index.
	Roots []string `toml:"roots" validate:"required,min=1,dive,url"`

	// Threads is the initial worker cap. It can only shrink at run
	// time (the Google-Drive clamp).
	Threads int `toml:"threads" validate:"gte=1,lte=128"`

	// TimeoutSeconds bounds each page fetch.
	TimeoutSeconds int `toml:"timeout_seconds" validate:"gte=1,lte=600"`

	// Retries is how often a fetch is retried on 429/5xx answers.
	Retries int `toml:"retries" validate:"gte=0,lte=10"`

	// RequestsPerSecond caps the request rate across all workers;
	// 0 leaves it uncapped.
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`

	// MaxDepth is the number of listing levels to fetch; 1 crawls only
	// the roots themselves, 0 means unbounded.
	MaxDepth int `toml:"max_depth" validate:"gte=0"`

	UserAgent string `toml:"user_agent"`

	// CheckParents enables the sanitizer's containment filtering.
	// Disabling it is only useful for debugging a single page.
	CheckParents bool `toml:"check_parents"`

	Debug bool `toml:"debug"`
}

// DefaultConfig returns the config used when no file and no flags are
// given (apart from the roots, which are mandatory).
func DefaultConfig() *Config {
	return &Config{
		Threads:           5,
		TimeoutSeconds:    100,
		Retries:           4,
		RequestsPerSecond: 0,
		UserAgent:         "Mozilla/5.0 (compatible; openindex/1.0)",
		CheckParents:      true,
	}
}

var validate = validator.New()

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration's field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
