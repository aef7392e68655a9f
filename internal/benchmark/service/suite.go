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

	"github.com/wso2/telco-query-federation/internal/benchmark/model"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	tracectx "github.com/wso2/telco-query-federation/internal/system/context"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

// RunFullSuite runs an index comparison and a concurrent load for each kind in order.
// A positive iterations overrides the configured count. A failed kind does not stop the
// suite; an exhausted suite budget does, and marks the report partial.
func (s *BenchmarkService) RunFullSuite(ctx context.Context, kinds []fedmodel.QueryKind, iterations int) model.SuiteReport {

	if iterations <= 0 {
		iterations = s.cfg.Iterations
	}
	if len(kinds) == 0 {
		kinds = fedmodel.AllQueryKinds()
	}
	ctx = ensureRunID(ctx)
	if s.cfg.SuiteBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SuiteBudget)
		defer cancel()
	}

	warmup := s.cfg.WarmupQueries
	if s.cfg.SkipWarmup {
		warmup = 0
	}
	report := model.SuiteReport{
		RunID:         tracectx.GetRunID(ctx),
		StartedAt:     s.now(),
		Iterations:    iterations,
		WarmupQueries: warmup,
		TaskTimeout:   s.cfg.TaskTimeout,
	}

	logger := log.GetLogger().With(log.String("run_id", report.RunID))
	logger.Audit(log.AuditEvent{
		InitiatorID:   report.RunID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      report.RunID,
		TargetType:    log.TargetTypeBenchmarkSuite,
		ActionID:      log.ActionBenchmarkStart,
		TraceID:       report.RunID,
		Data:          map[string]interface{}{"kinds": kinds, "iterations": report.Iterations},
	})

	for _, kind := range kinds {
		if ctx.Err() != nil {
			logger.Warn("Suite budget exhausted, skipping remaining kinds", log.String("next_kind", string(kind)))
			report.Partial = true
			break
		}
		comparison := s.RunIndexComparison(ctx, kind, iterations, s.cfg.WarmupQueries)
		kindReport := model.KindReport{Kind: kind, Comparison: comparison}
		if comparison.Partial {
			report.Partial = true
		}
		if ctx.Err() == nil {
			load := s.RunConcurrentLoad(ctx, kind, s.cfg.ConcurrentWorkers)
			kindReport.Concurrent = &load
			if load.Partial {
				report.Partial = true
			}
		}
		kindReport.Recommendation = KindRecommendation(comparison)
		report.Kinds = append(report.Kinds, kindReport)
	}

	report.Summary = SummarizeSuite(report.Kinds)
	report.Recommendations = suiteRecommendations(report)
	report.FinishedAt = s.now()

	logger.Audit(log.AuditEvent{
		InitiatorID:   report.RunID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      report.RunID,
		TargetType:    log.TargetTypeBenchmarkSuite,
		ActionID:      log.ActionBenchmarkFinish,
		TraceID:       report.RunID,
		Data: map[string]interface{}{
			"kinds_tested":           report.Summary.KindsTested,
			"successful_comparisons": report.Summary.SuccessfulComparisons,
			"partial":                report.Partial,
		},
	})
	return report
}

// SummarizeSuite aggregates the comparisons of a suite. Only kinds that completed with a
// defined improvement contribute to the improvement figures.
func SummarizeSuite(kinds []model.KindReport) model.SuiteSummary {
	summary := model.SuiteSummary{KindsTested: len(kinds)}
	var improvements []float64
	for _, kind := range kinds {
		comparison := kind.Comparison
		summary.TotalMeanWithoutIndex += comparison.WithoutIndex.MeanTime
		summary.TotalMeanWithIndex += comparison.WithIndex.MeanTime
		if comparison.State != model.PhaseDone || comparison.ImprovementPercent == nil {
			continue
		}
		summary.SuccessfulComparisons++
		improvements = append(improvements, *comparison.ImprovementPercent)
	}
	summary.TotalTimeSaved = summary.TotalMeanWithoutIndex - summary.TotalMeanWithIndex
	if len(improvements) == 0 {
		return summary
	}

	total, best, worst := 0.0, improvements[0], improvements[0]
	for _, v := range improvements {
		total += v
		if v > best {
			best = v
		}
		if v < worst {
			worst = v
		}
	}
	average := total / float64(len(improvements))
	summary.AverageImprovement = &average
	summary.BestImprovement = &best
	summary.WorstImprovement = &worst
	return summary
}

// KindRecommendation grades one comparison by its improvement.
func KindRecommendation(comparison model.IndexComparison) string {
	kind := comparison.Kind
	if comparison.State == model.PhaseFailed {
		return fmt.Sprintf("%s: Measurement failed (%s)", kind, comparison.Error)
	}
	if comparison.ImprovementPercent == nil {
		return fmt.Sprintf("%s: No improvement could be measured - review the benchmark setup", kind)
	}
	improvement := *comparison.ImprovementPercent
	switch {
	case improvement > 50:
		return fmt.Sprintf("%s: Excellent index performance (%.1f%% improvement)", kind, improvement)
	case improvement > 20:
		return fmt.Sprintf("%s: Good index performance (%.1f%% improvement)", kind, improvement)
	case improvement > 0:
		return fmt.Sprintf("%s: Minimal improvement (%.1f%%) - consider query optimization", kind, improvement)
	default:
		return fmt.Sprintf("%s: No improvement detected - review index strategy", kind)
	}
}

func suiteRecommendations(report model.SuiteReport) []string {
	recommendations := make([]string, 0, len(report.Kinds)+1)
	for _, kind := range report.Kinds {
		recommendations = append(recommendations, kind.Recommendation)
	}

	average := report.Summary.AverageImprovement
	switch {
	case average == nil:
		recommendations = append(recommendations, "Overall: No index improvement could be measured")
	case *average > 40:
		recommendations = append(recommendations, "Overall: Excellent indexing strategy - indexes are highly effective")
	case *average > 20:
		recommendations = append(recommendations, "Overall: Good indexing strategy - consider additional optimizations")
	default:
		recommendations = append(recommendations, "Overall: Review indexing strategy - limited performance gains")
	}
	if report.Partial {
		recommendations = append(recommendations, "Overall: Results are partial - the suite did not complete within its budget")
	}
	return recommendations
}
