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

package managers

import (
	"context"
	"time"

	benchmodel "github.com/wso2/telco-query-federation/internal/benchmark/model"
	benchservice "github.com/wso2/telco-query-federation/internal/benchmark/service"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	fedservice "github.com/wso2/telco-query-federation/internal/federation/service"
	"github.com/wso2/telco-query-federation/internal/federation/store"
	healthservice "github.com/wso2/telco-query-federation/internal/health_check/service"
	perfmodel "github.com/wso2/telco-query-federation/internal/performance/model"
	perfservice "github.com/wso2/telco-query-federation/internal/performance/service"
	"github.com/wso2/telco-query-federation/internal/system/config"
	tracectx "github.com/wso2/telco-query-federation/internal/system/context"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
	"github.com/wso2/telco-query-federation/internal/system/database/provider"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

// EngineManagerInterface is the surface exposed to drivers of the engine.
type EngineManagerInterface interface {
	ExecuteQuery(ctx context.Context, kind fedmodel.QueryKind, params map[string]string) fedmodel.QueryResult
	RunBenchmark(ctx context.Context, kinds []fedmodel.QueryKind, iterations int) (benchmodel.SuiteReport, error)
	RecentHistory(limit int) []perfmodel.PerformanceSample
	LatestMetrics() map[fedmodel.QueryKind]perfmodel.KindMetrics
	Compare(kind fedmodel.QueryKind) perfmodel.Comparison
	Readiness(ctx context.Context) (healthservice.Readiness, error)
	Close() error
}

// EngineManager wires the store clients, the federator, the metric recorder and the
// benchmark harness together.
type EngineManager struct {
	wideColumn client.WideColumnClientInterface
	document   client.DocumentClientInterface
	federation fedservice.FederationServiceInterface
	recorder   *perfservice.MetricRecorder
	health     healthservice.HealthCheckServiceInterface
	benchmark  *benchservice.BenchmarkService
	cfg        config.Config
}

// NewEngineManager connects to both stores using the runtime configuration.
func NewEngineManager(ctx context.Context) (*EngineManager, error) {

	cfg := config.GetRuntime().Config
	dbProvider := provider.NewDBProvider()
	wideColumn, err := dbProvider.GetWideColumnClient()
	if err != nil {
		return nil, err
	}
	document, err := dbProvider.GetDocumentClient(ctx)
	if err != nil {
		_ = wideColumn.Close()
		return nil, err
	}
	return NewEngineManagerWithClients(wideColumn, document, cfg), nil
}

// NewEngineManagerWithClients wires the engine over existing store clients.
func NewEngineManagerWithClients(wideColumn client.WideColumnClientInterface, document client.DocumentClientInterface,
	cfg config.Config) *EngineManager {

	federation := fedservice.NewFederationService(store.NewEventStore(wideColumn), store.NewCustomerStore(document),
		cfg.Federation)
	recorder := perfservice.NewMetricRecorder(cfg.Benchmark.HistoryCapacity)
	indexes := benchservice.NewIndexManager(wideColumn, document,
		cfg.Benchmark.ConvergenceTimeout, cfg.Benchmark.ConvergenceInitialInterval)

	return &EngineManager{
		wideColumn: wideColumn,
		document:   document,
		federation: federation,
		recorder:   recorder,
		health:     healthservice.NewHealthCheckService(wideColumn, document),
		benchmark:  benchservice.NewBenchmarkService(federation, indexes, recorder, cfg.Benchmark),
		cfg:        cfg,
	}
}

// ExecuteQuery runs one query of kind built from params. Invalid parameters yield a
// failed result carrying a configuration fault. Every execution is recorded.
func (e *EngineManager) ExecuteQuery(ctx context.Context, kind fedmodel.QueryKind, params map[string]string) fedmodel.QueryResult {

	traceID := tracectx.GetOrGenerateTraceID(ctx)
	ctx = tracectx.WithTraceID(ctx, traceID)
	query, err := fedmodel.QueryFromParams(kind, params, time.Now())
	if err != nil {
		fault := err
		if !errors.HasCode(err, errors.CONFIGURATION_FAULT) {
			fault = errors.NewFederationErrorWithTraceID(errors.CONFIGURATION_FAULT, err.Error(), err, traceID)
		}
		log.GetLogger().Warn("Rejected query parameters", log.String("kind", string(kind)),
			log.String("trace_id", traceID), log.Error(err))
		return fedmodel.FailedResult(kind, traceID, 0, fault)
	}

	result := e.federation.ExecuteQuery(ctx, query)
	e.recorder.RecordSample(perfmodel.PerformanceSample{
		Kind:        kind,
		Duration:    result.ExecutionTime,
		WithIndex:   e.benchmark.IndexesPresent(),
		Success:     result.Succeeded(),
		ResultCount: result.RecordCount(),
		Error:       result.Error,
	})
	return result
}

// RunBenchmark checks both stores and runs the benchmark suite over kinds. A positive
// iterations overrides the configured count.
func (e *EngineManager) RunBenchmark(ctx context.Context, kinds []fedmodel.QueryKind, iterations int) (benchmodel.SuiteReport, error) {

	if _, err := e.health.CheckReadiness(ctx); err != nil {
		return benchmodel.SuiteReport{}, err
	}

	return e.benchmark.RunFullSuite(ctx, kinds, iterations), nil
}

// RecentHistory returns up to limit most recent samples, newest first.
func (e *EngineManager) RecentHistory(limit int) []perfmodel.PerformanceSample {
	return e.recorder.RecentSamples(limit)
}

// LatestMetrics returns the rolling average of each kind's latest samples.
func (e *EngineManager) LatestMetrics() map[fedmodel.QueryKind]perfmodel.KindMetrics {
	return e.recorder.LatestMetrics()
}

// Compare contrasts retained samples of kind taken with and without indexes.
func (e *EngineManager) Compare(kind fedmodel.QueryKind) perfmodel.Comparison {
	return e.recorder.Compare(kind)
}

// Readiness pings both stores.
func (e *EngineManager) Readiness(ctx context.Context) (healthservice.Readiness, error) {
	return e.health.CheckReadiness(ctx)
}

// Close closes both store clients.
func (e *EngineManager) Close() error {
	wideErr := e.wideColumn.Close()
	if err := e.document.Close(); err != nil {
		return err
	}
	return wideErr
}
