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

	"golang.org/x/time/rate"

	"github.com/wso2/telco-query-federation/internal/benchmark/model"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	perfmodel "github.com/wso2/telco-query-federation/internal/performance/model"
	perfservice "github.com/wso2/telco-query-federation/internal/performance/service"
	"github.com/wso2/telco-query-federation/internal/system/constants"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

// RunConcurrentLoad submits workers*2 copies of kind's default query to a pool of
// workers. Every task yields exactly one sample; a task exceeding the task timeout is
// recorded as failed with TimedOut set.
func (s *BenchmarkService) RunConcurrentLoad(ctx context.Context, kind fedmodel.QueryKind, workers int) model.ConcurrentLoad {

	ctx = ensureRunID(ctx)
	if workers <= 0 {
		workers = s.cfg.ConcurrentWorkers
	}
	if workers <= 0 {
		workers = 1
	}
	tasks := workers * constants.TasksPerWorker
	load := model.ConcurrentLoad{Kind: kind, Workers: workers, Tasks: tasks}
	logger := log.GetLogger().With(log.String("kind", string(kind)), log.Int("workers", workers))

	query, err := fedmodel.DefaultQuery(kind, s.now())
	if err != nil {
		load.Error = err.Error()
		return load
	}

	var limiter *rate.Limiter
	if s.cfg.MaxQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.MaxQPS), 1)
	}
	withIndex := s.isIndexed()

	jobs := make(chan struct{})
	results := make(chan perfmodel.PerformanceSample, tasks)
	var wg sync.WaitGroup

	began := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- s.recorder.RecordSample(s.runTask(ctx, kind, query, withIndex))
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := 0; i < tasks; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break dispatch
			}
		}
		select {
		case jobs <- struct{}{}:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	load.WallClock = time.Since(began)

	for sample := range results {
		load.Samples = append(load.Samples, sample)
	}
	if dispatched < tasks {
		load.Partial = true
		load.Error = interrupted(ctx).Error()
	}
	load.Statistics = perfservice.Summarize(load.Samples)
	if load.WallClock > 0 {
		load.QueriesPerSecond = float64(len(load.Samples)) / load.WallClock.Seconds()
	}

	logger.Info("Concurrent load completed",
		log.Int("tasks", len(load.Samples)),
		log.Int("successful", load.Statistics.SuccessfulIterations),
		log.Duration("wall_clock", load.WallClock),
		log.Float("qps", load.QueriesPerSecond))
	return load
}

// runTask executes one query under the task timeout. The query keeps running in its own
// goroutine until it observes the cancelled context; its result is discarded.
func (s *BenchmarkService) runTask(ctx context.Context, kind fedmodel.QueryKind, query fedmodel.Query,
	withIndex bool) perfmodel.PerformanceSample {

	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.TaskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, s.cfg.TaskTimeout)
	}
	defer cancel()

	began := time.Now()
	done := make(chan fedmodel.QueryResult, 1)
	go func() {
		done <- s.executor.ExecuteQuery(taskCtx, query)
	}()

	select {
	case result := <-done:
		return sampleFromResult(kind, result, withIndex)
	case <-taskCtx.Done():
		sample := perfmodel.PerformanceSample{
			Kind:      kind,
			Duration:  time.Since(began),
			WithIndex: withIndex,
		}
		if ctx.Err() != nil {
			sample.Error = interrupted(ctx).Error()
			return sample
		}
		sample.TimedOut = true
		sample.Error = errors.NewFederationError(errors.TASK_TIMEOUT,
			fmt.Sprintf("The task exceeded its %s timeout.", s.cfg.TaskTimeout), taskCtx.Err()).Error()
		log.GetLogger().Warn("Concurrent task timed out", log.String("kind", string(kind)),
			log.Duration("timeout", s.cfg.TaskTimeout))
		return sample
	}
}
