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

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wso2/telco-query-federation/internal/benchmark/model"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	perfmodel "github.com/wso2/telco-query-federation/internal/performance/model"
	perfservice "github.com/wso2/telco-query-federation/internal/performance/service"
	"github.com/wso2/telco-query-federation/internal/system/config"
	tracectx "github.com/wso2/telco-query-federation/internal/system/context"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

// QueryExecutor runs a single query and reports its outcome.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query fedmodel.Query) fedmodel.QueryResult
}

// BenchmarkServiceInterface measures the latency effect of secondary indexes.
type BenchmarkServiceInterface interface {
	RunIndexComparison(ctx context.Context, kind fedmodel.QueryKind, iterations, warmup int) model.IndexComparison
	RunConcurrentLoad(ctx context.Context, kind fedmodel.QueryKind, workers int) model.ConcurrentLoad
	RunFullSuite(ctx context.Context, kinds []fedmodel.QueryKind, iterations int) model.SuiteReport
}

// BenchmarkService drives the federator through index-impact experiments. Control flow
// is sequential; only concurrent load runs queries in parallel.
type BenchmarkService struct {
	executor QueryExecutor
	indexes  IndexManagerInterface
	recorder perfservice.MetricRecorderInterface
	cfg      config.BenchmarkConfig
	now      func() time.Time

	mu      sync.Mutex
	indexed bool
}

// NewBenchmarkService creates a harness. Stores are assumed to be indexed until the
// first drop.
func NewBenchmarkService(executor QueryExecutor, indexes IndexManagerInterface,
	recorder perfservice.MetricRecorderInterface, cfg config.BenchmarkConfig) *BenchmarkService {

	return &BenchmarkService{
		executor: executor,
		indexes:  indexes,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
		indexed:  true,
	}
}

// RunIndexComparison measures kind without indexes, then with indexes. A failing phase
// ends the run in FAILED; an interrupted run also sets Partial and keeps what was
// measured.
func (s *BenchmarkService) RunIndexComparison(ctx context.Context, kind fedmodel.QueryKind, iterations, warmup int) model.IndexComparison {

	ctx = ensureRunID(ctx)
	logger := log.GetLogger().With(log.String("run_id", tracectx.GetRunID(ctx)), log.String("kind", string(kind)))

	if s.cfg.SkipWarmup || warmup < 0 {
		warmup = 0
	}
	report := model.IndexComparison{
		RunID:         tracectx.GetRunID(ctx),
		Kind:          kind,
		Iterations:    iterations,
		WarmupQueries: warmup,
	}

	query, err := fedmodel.DefaultQuery(kind, s.now())
	if err != nil {
		return s.failComparison(ctx, &report, err)
	}
	if iterations <= 0 {
		return s.failComparison(ctx, &report, errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Iterations must be positive, got %d.", iterations), nil))
	}

	logger.Info("Starting index comparison", log.Int("iterations", iterations), log.Int("warmup", warmup))

	err = s.runPhase(&report, model.PhaseDropConverge, func() error {
		if err := s.indexes.DropIndexes(ctx); err != nil {
			return err
		}
		s.setIndexed(false)
		return s.indexes.AwaitDropped(ctx)
	})
	if err != nil {
		return s.failComparison(ctx, &report, err)
	}
	if err = s.warmupPhase(ctx, &report, query, warmup); err != nil {
		return s.failComparison(ctx, &report, err)
	}
	err = s.runPhase(&report, model.PhaseMeasureNoIndex, func() error {
		var measureErr error
		report.WithoutSamples, measureErr = s.measure(ctx, kind, query, iterations, false)
		return measureErr
	})
	if err != nil {
		return s.failComparison(ctx, &report, err)
	}

	err = s.runPhase(&report, model.PhaseBuildConverge, func() error {
		if err := s.indexes.CreateIndexes(ctx); err != nil {
			return err
		}
		if err := s.indexes.AwaitBuilt(ctx); err != nil {
			return err
		}
		s.setIndexed(true)
		return nil
	})
	if err != nil {
		return s.failComparison(ctx, &report, err)
	}
	if err = s.warmupPhase(ctx, &report, query, warmup); err != nil {
		return s.failComparison(ctx, &report, err)
	}
	err = s.runPhase(&report, model.PhaseMeasureWithIndex, func() error {
		var measureErr error
		report.WithSamples, measureErr = s.measure(ctx, kind, query, iterations, true)
		return measureErr
	})
	if err != nil {
		return s.failComparison(ctx, &report, err)
	}

	s.finalizeComparison(&report)
	report.State = model.PhaseDone
	report.Phases = append(report.Phases, model.PhaseTransition{Phase: model.PhaseDone, StartedAt: s.now()})
	if report.ImprovementPercent != nil {
		logger.Info("Index comparison completed", log.Float("improvement_percent", *report.ImprovementPercent))
	} else {
		logger.Warn("Index comparison completed without a defined improvement")
	}
	return report
}

func (s *BenchmarkService) runPhase(report *model.IndexComparison, phase model.Phase, fn func() error) error {
	began := s.now()
	err := fn()
	transition := model.PhaseTransition{
		Phase:     phase,
		StartedAt: began,
		Duration:  s.now().Sub(began),
	}
	if err != nil {
		transition.Error = err.Error()
	}
	report.Phases = append(report.Phases, transition)
	return err
}

func (s *BenchmarkService) warmupPhase(ctx context.Context, report *model.IndexComparison, query fedmodel.Query, warmup int) error {
	if warmup <= 0 {
		return nil
	}
	return s.runPhase(report, model.PhaseWarmup, func() error {
		for i := 0; i < warmup; i++ {
			if err := interrupted(ctx); err != nil {
				return err
			}
			s.executor.ExecuteQuery(ctx, query)
		}
		return nil
	})
}

// measure runs the timed iterations and records every sample. Iterations are separated
// by the configured delay.
func (s *BenchmarkService) measure(ctx context.Context, kind fedmodel.QueryKind, query fedmodel.Query,
	iterations int, withIndex bool) ([]perfmodel.PerformanceSample, error) {

	samples := make([]perfmodel.PerformanceSample, 0, iterations)
	for i := 0; i < iterations; i++ {
		if err := interrupted(ctx); err != nil {
			return samples, err
		}
		result := s.executor.ExecuteQuery(ctx, query)
		if err := interrupted(ctx); err != nil {
			return samples, err
		}
		samples = append(samples, s.recorder.RecordSample(sampleFromResult(kind, result, withIndex)))

		if i < iterations-1 && s.cfg.IterationDelay > 0 {
			if err := sleep(ctx, s.cfg.IterationDelay); err != nil {
				return samples, interrupted(ctx)
			}
		}
	}
	return samples, nil
}

func (s *BenchmarkService) finalizeComparison(report *model.IndexComparison) {
	report.WithoutIndex = perfservice.Summarize(report.WithoutSamples)
	report.WithIndex = perfservice.Summarize(report.WithSamples)
	if report.WithoutIndex.SuccessfulIterations == 0 || report.WithIndex.SuccessfulIterations == 0 {
		return
	}
	report.ImprovementPercent = perfservice.ImprovementPercent(report.WithoutIndex.MeanTime, report.WithIndex.MeanTime)
	if report.ImprovementPercent != nil {
		report.SpeedupFactor = perfservice.SpeedupFactor(report.WithoutIndex.MeanTime, report.WithIndex.MeanTime)
	}
}

func (s *BenchmarkService) failComparison(ctx context.Context, report *model.IndexComparison, err error) model.IndexComparison {
	s.finalizeComparison(report)
	report.State = model.PhaseFailed
	report.Error = err.Error()
	report.Partial = ctx.Err() != nil || errors.HasCode(err, errors.BENCHMARK_BUDGET_EXHAUSTED)
	if restoreErr := s.restoreIndexes(ctx, report); restoreErr != nil {
		report.Error = fmt.Sprintf("%s; indexes were left dropped: %s", report.Error, restoreErr)
	}
	report.Phases = append(report.Phases, model.PhaseTransition{
		Phase:     model.PhaseFailed,
		StartedAt: s.now(),
		Error:     err.Error(),
	})
	log.GetLogger().Error("Index comparison failed",
		log.String("run_id", report.RunID), log.String("kind", string(report.Kind)), log.Error(err))
	return *report
}

// restoreIndexes rebuilds indexes a failed comparison had dropped. It ignores the run's
// cancellation so an exhausted budget does not leave the stores unindexed.
func (s *BenchmarkService) restoreIndexes(ctx context.Context, report *model.IndexComparison) error {
	if s.isIndexed() {
		return nil
	}
	log.GetLogger().Warn("Restoring indexes after a failed comparison",
		log.String("run_id", report.RunID), log.String("kind", string(report.Kind)))

	ctx = context.WithoutCancel(ctx)
	if err := s.indexes.CreateIndexes(ctx); err != nil {
		return err
	}
	if err := s.indexes.AwaitBuilt(ctx); err != nil {
		return err
	}
	s.setIndexed(true)
	return nil
}

func (s *BenchmarkService) setIndexed(indexed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed = indexed
}

// IndexesPresent reports the index state the harness last established.
func (s *BenchmarkService) IndexesPresent() bool {
	return s.isIndexed()
}

func (s *BenchmarkService) isIndexed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexed
}

func sampleFromResult(kind fedmodel.QueryKind, result fedmodel.QueryResult, withIndex bool) perfmodel.PerformanceSample {
	return perfmodel.PerformanceSample{
		Kind:        kind,
		Duration:    result.ExecutionTime,
		WithIndex:   withIndex,
		Success:     result.Succeeded(),
		ResultCount: result.RecordCount(),
		Error:       result.Error,
	}
}

// interrupted converts a finished context into a budget fault.
func interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return errors.NewFederationError(errors.BENCHMARK_BUDGET_EXHAUSTED,
		"The benchmark was interrupted before the phase completed.", ctx.Err())
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func ensureRunID(ctx context.Context) context.Context {
	if tracectx.GetRunID(ctx) != "" {
		return ctx
	}
	return tracectx.WithRunID(ctx, tracectx.GenerateTraceID())
}
