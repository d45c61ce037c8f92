// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/huandu/go-clone"
)

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StorageConfig struct {
	// names of the compression methods that must never be chosen
	DisabledCompression []string `toml:"disabled_compression"`
}

type AggregateConfig struct {
	Threads    int `toml:"threads"`
	VectorSize int `toml:"vector_size"`
}

type DebugOptions struct {
	PrintResult bool `toml:"print_result"`
	PrintLayout bool `toml:"print_layout"`
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	Storage   StorageConfig   `toml:"storage"`
	Aggregate AggregateConfig `toml:"aggregate"`
	Debug     DebugOptions    `toml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Aggregate: AggregateConfig{
			Threads:    runtime.GOMAXPROCS(0),
			VectorSize: DefaultVectorSize,
		},
	}
}

// LoadConfig decodes the toml file on top of the default config.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.Adjust()
	return cfg, nil
}

// Adjust clamps values that are out of range.
func (cfg *Config) Adjust() {
	if cfg.Aggregate.Threads <= 0 {
		cfg.Aggregate.Threads = 1
	}
	if cfg.Aggregate.VectorSize <= 0 || cfg.Aggregate.VectorSize > DefaultVectorSize {
		cfg.Aggregate.VectorSize = DefaultVectorSize
	}
}

func (cfg *Config) Copy() *Config {
	return clone.Clone(cfg).(*Config)
}
