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

import "time"

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

// CassandraConfig holds the wide-column store connection settings.
type CassandraConfig struct {
	Hosts             []string      `yaml:"hosts"`
	Port              int           `yaml:"port"`
	Keyspace          string        `yaml:"keyspace"`
	Consistency       string        `yaml:"consistency"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	Timeout           time.Duration `yaml:"timeout"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// MongoConfig holds the document store connection settings.
type MongoConfig struct {
	URI               string        `yaml:"uri"`
	Database          string        `yaml:"database"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// FederationConfig tunes the query federator.
type FederationConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout"`
	// OverFetchFactor multiplies the combined query limit when selecting store-A
	// candidates. It does not guarantee limit joined rows.
	OverFetchFactor int `yaml:"over_fetch_factor"`
}

// BenchmarkConfig tunes the benchmark harness.
type BenchmarkConfig struct {
	Iterations                 int           `yaml:"iterations"`
	WarmupQueries              int           `yaml:"warmup_queries"`
	SkipWarmup                 bool          `yaml:"skip_warmup"`
	IterationDelay             time.Duration `yaml:"iteration_delay"`
	TaskTimeout                time.Duration `yaml:"task_timeout"`
	ConcurrentWorkers          int           `yaml:"concurrent_workers"`
	MaxQPS                     float64       `yaml:"max_qps"`
	ConvergenceTimeout         time.Duration `yaml:"convergence_timeout"`
	ConvergenceInitialInterval time.Duration `yaml:"convergence_initial_interval"`
	SuiteBudget                time.Duration `yaml:"suite_budget"`
	HistoryCapacity            int           `yaml:"history_capacity"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Cassandra  CassandraConfig  `yaml:"cassandra"`
	MongoDB    MongoConfig      `yaml:"mongodb"`
	Federation FederationConfig `yaml:"federation"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark"`
}

// DefaultConfig returns the configuration used when no file overrides a value.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{LogLevel: "INFO"},
		Cassandra: CassandraConfig{
			Hosts:             []string{"127.0.0.1"},
			Port:              9042,
			Keyspace:          "telco_cdr",
			Consistency:       "LOCAL_ONE",
			Timeout:           30 * time.Second,
			ConnectionTimeout: 10 * time.Second,
		},
		MongoDB: MongoConfig{
			URI:               "mongodb://localhost:27017/",
			Database:          "telco_customers",
			ConnectionTimeout: 30 * time.Second,
		},
		Federation: FederationConfig{
			QueryTimeout:    30 * time.Second,
			OverFetchFactor: 2,
		},
		Benchmark: BenchmarkConfig{
			Iterations:                 5,
			WarmupQueries:              2,
			IterationDelay:             100 * time.Millisecond,
			TaskTimeout:                30 * time.Second,
			ConcurrentWorkers:          5,
			ConvergenceTimeout:         60 * time.Second,
			ConvergenceInitialInterval: 200 * time.Millisecond,
			HistoryCapacity:            1000,
		},
	}
}
