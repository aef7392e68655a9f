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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/system/config"
	"github.com/wso2/telco-query-federation/internal/system/log"
	"github.com/wso2/telco-query-federation/internal/system/managers"
)

const defaultConfigFile = "repository/conf/deployment.yaml"

// engineFactory builds the engine from the runtime configuration; replaced in tests.
var engineFactory = func(ctx context.Context) (managers.EngineManagerInterface, error) {
	return managers.NewEngineManager(ctx)
}

type cliOptions struct {
	configFile        string
	verbose           bool
	iterations        int
	concurrentThreads int
	queryType         string
	noWarmup          bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:          "federation-bench",
		Short:        "Federated call-record and customer queries with index-impact benchmarks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to the deployment configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the index-impact benchmark suite and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, opts)
		},
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().IntVar(&opts.iterations, "iterations", 0, "Measured iterations per phase (default from configuration)")
		c.Flags().IntVar(&opts.concurrentThreads, "concurrent-threads", 0, "Workers for the concurrent load test (default from configuration)")
		c.Flags().StringVar(&opts.queryType, "query-type", "all", "Query kind to benchmark: all, call_analytics, customer_insights or combined_behavior")
		c.Flags().BoolVar(&opts.noWarmup, "no-warmup", false, "Skip warmup queries")
	}

	queryCmd := &cobra.Command{
		Use:   "query <kind> [name=value...]",
		Short: "Execute one federated query and print its result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to both stores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	rootCmd.AddCommand(runCmd, queryCmd, statusCmd)
	return rootCmd
}

func runBenchmark(cmd *cobra.Command, opts *cliOptions) error {
	kinds, err := parseKinds(opts.queryType)
	if err != nil {
		return err
	}
	if err := loadConfig(cmd, opts); err != nil {
		return err
	}

	engine, err := engineFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	report, err := engine.RunBenchmark(cmd.Context(), kinds, opts.iterations)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func runQuery(cmd *cobra.Command, opts *cliOptions, args []string) error {
	kind, err := fedmodel.ParseQueryKind(args[0])
	if err != nil {
		return err
	}
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}
	if err := loadConfig(cmd, opts); err != nil {
		return err
	}

	engine, err := engineFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	result := engine.ExecuteQuery(cmd.Context(), kind, params)
	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}
	return nil
}

func runStatus(cmd *cobra.Command, opts *cliOptions) error {
	if err := loadConfig(cmd, opts); err != nil {
		return err
	}
	engine, err := engineFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	readiness, checkErr := engine.Readiness(cmd.Context())
	if err := writeJSON(cmd.OutOrStdout(), readiness); err != nil {
		return err
	}
	return checkErr
}

// loadConfig reads the configuration file, initializes the logger and publishes the
// configuration, with command-line overrides applied, as the runtime. A missing default
// file falls back to the built-in defaults.
func loadConfig(cmd *cobra.Command, opts *cliOptions) error {
	home, err := os.Getwd()
	if err != nil {
		return err
	}
	envFiles, _ := filepath.Glob(filepath.Join(home, "repository", "conf", "*.env"))
	config.LoadEnvFiles(envFiles...)

	var cfg *config.Config
	switch {
	case opts.configFile != "":
		cfg, err = config.LoadConfig("", opts.configFile)
	case fileExists(filepath.Join(home, defaultConfigFile)):
		cfg, err = config.LoadConfig(home, defaultConfigFile)
	default:
		cfg, err = config.ParseConfig(nil)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Log.LogLevel
	if opts.verbose {
		level = "DEBUG"
	}
	if strings.TrimSpace(level) == "" {
		level = "INFO"
	}
	if err := log.InitWithWriter(level, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := config.InitializeRuntime(home, cfg); err != nil {
		return err
	}

	if opts.concurrentThreads > 0 {
		cfg.Benchmark.ConcurrentWorkers = opts.concurrentThreads
	}
	if opts.noWarmup {
		cfg.Benchmark.SkipWarmup = true
	}
	// The runtime is initialized once per process; every command republishes its own view.
	config.OverrideRuntime(*cfg)
	return nil
}

func parseKinds(queryType string) ([]fedmodel.QueryKind, error) {
	if queryType == "" || strings.EqualFold(queryType, "all") {
		return fedmodel.AllQueryKinds(), nil
	}
	var kinds []fedmodel.QueryKind
	for _, name := range strings.Split(queryType, ",") {
		kind, err := fedmodel.ParseQueryKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", arg)
		}
		params[name] = value
	}
	return params, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func closeEngine(engine managers.EngineManagerInterface) {
	if err := engine.Close(); err != nil {
		log.GetLogger().Warn("Failed to close store clients", log.Error(err))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
