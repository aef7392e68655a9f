/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"os"
	"path"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// LoadEnvFiles loads the given .env files into the process environment. Missing
// files are ignored so deployments without them keep working.
func LoadEnvFiles(files ...string) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		_ = godotenv.Load(existing...)
	}
}

// LoadConfig reads the YAML file at home/filePath, expands environment variables and
// overlays it on DefaultConfig.
func LoadConfig(home, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(home, filePath))
	if err != nil {
		return nil, err
	}
	return ParseConfig(file)
}

// ParseConfig parses raw YAML on top of DefaultConfig.
func ParseConfig(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides lets the well-known variables of the deployment scripts win over
// file values.
func applyEnvOverrides(cfg *Config) {
	if host := GetEnvStr("CASSANDRA_HOST", ""); host != "" {
		cfg.Cassandra.Hosts = []string{host}
	}
	cfg.Cassandra.Port = GetEnvInt("CASSANDRA_PORT", cfg.Cassandra.Port)
	cfg.Cassandra.Keyspace = GetEnvStr("CASSANDRA_KEYSPACE", cfg.Cassandra.Keyspace)
	cfg.MongoDB.URI = GetEnvStr("MONGO_URI", cfg.MongoDB.URI)
	cfg.MongoDB.Database = GetEnvStr("MONGO_DB", cfg.MongoDB.Database)
	cfg.Benchmark.Iterations = GetEnvInt("PERF_ITER", cfg.Benchmark.Iterations)
	cfg.Benchmark.WarmupQueries = GetEnvInt("PERF_WARMUP", cfg.Benchmark.WarmupQueries)
	cfg.Benchmark.TaskTimeout = GetEnvDuration("PERF_TIMEOUT", cfg.Benchmark.TaskTimeout)
	cfg.Log.LogLevel = GetEnvStr("LOG_LEVEL", cfg.Log.LogLevel)
}

// OverrideRuntime replaces the runtime configuration, keeping the home directory.
func OverrideRuntime(conf Config) {
	home := ""
	if runtimeConfig != nil {
		home = runtimeConfig.Home
	}
	runtimeConfig = &Runtime{
		Home:   home,
		Config: conf,
	}
}

// GetEnvStr returns a string environment variable value or a default if not set.
func GetEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// GetEnvInt returns an int environment variable value or a default if not set or
// not a number.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

// GetEnvDuration returns a duration environment variable value or a default. Bare
// integers are read as seconds, matching the PERF_TIMEOUT convention.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return defaultValue
}
