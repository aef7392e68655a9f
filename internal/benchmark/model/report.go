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

package model

import (
	"time"

	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	perfmodel "github.com/wso2/telco-query-federation/internal/performance/model"
)

// Phase is a state of an index-impact run.
type Phase string

const (
	PhaseDropConverge     Phase = "DROP_CONVERGE"
	PhaseWarmup           Phase = "WARMUP"
	PhaseMeasureNoIndex   Phase = "MEASURE_NO_INDEX"
	PhaseBuildConverge    Phase = "BUILD_CONVERGE"
	PhaseMeasureWithIndex Phase = "MEASURE_WITH_INDEX"
	PhaseDone             Phase = "DONE"
	PhaseFailed           Phase = "FAILED"
)

// PhaseTransition records one phase of a run.
type PhaseTransition struct {
	Phase     Phase         `json:"phase"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// IndexComparison is the outcome of measuring one query kind without and with indexes.
type IndexComparison struct {
	RunID              string                        `json:"run_id"`
	Kind               fedmodel.QueryKind            `json:"kind"`
	Iterations         int                           `json:"iterations"`
	WarmupQueries      int                           `json:"warmup_queries"`
	State              Phase                         `json:"state"`
	Phases             []PhaseTransition             `json:"phases"`
	WithoutIndex       perfmodel.Statistics          `json:"without_index"`
	WithIndex          perfmodel.Statistics          `json:"with_index"`
	ImprovementPercent *float64                      `json:"improvement_percent,omitempty"`
	SpeedupFactor      *float64                      `json:"speedup_factor,omitempty"`
	Partial            bool                          `json:"partial,omitempty"`
	Error              string                        `json:"error,omitempty"`
	WithoutSamples     []perfmodel.PerformanceSample `json:"-"`
	WithSamples        []perfmodel.PerformanceSample `json:"-"`
}

// ConcurrentLoad is the outcome of running a kind on a bounded worker pool.
type ConcurrentLoad struct {
	Kind             fedmodel.QueryKind            `json:"kind"`
	Workers          int                           `json:"workers"`
	Tasks            int                           `json:"tasks"`
	WallClock        time.Duration                 `json:"wall_clock_ns"`
	QueriesPerSecond float64                       `json:"queries_per_second"`
	Statistics       perfmodel.Statistics          `json:"statistics"`
	Partial          bool                          `json:"partial,omitempty"`
	Error            string                        `json:"error,omitempty"`
	Samples          []perfmodel.PerformanceSample `json:"-"`
}

// KindReport groups the measurements of one kind within a suite.
type KindReport struct {
	Kind           fedmodel.QueryKind `json:"kind"`
	Comparison     IndexComparison    `json:"comparison"`
	Concurrent     *ConcurrentLoad    `json:"concurrent,omitempty"`
	Recommendation string             `json:"recommendation"`
}

// SuiteSummary aggregates across kinds. Improvement figures only cover kinds whose
// improvement was defined and are nil when none was.
type SuiteSummary struct {
	KindsTested           int      `json:"kinds_tested"`
	SuccessfulComparisons int      `json:"successful_comparisons"`
	AverageImprovement    *float64 `json:"average_improvement,omitempty"`
	BestImprovement       *float64 `json:"best_improvement,omitempty"`
	WorstImprovement      *float64 `json:"worst_improvement,omitempty"`
	TotalMeanWithoutIndex float64  `json:"total_mean_without_index"`
	TotalMeanWithIndex    float64  `json:"total_mean_with_index"`
	TotalTimeSaved        float64  `json:"total_time_saved"`
}

// SuiteReport is the result of a full benchmark suite.
type SuiteReport struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Iterations      int           `json:"iterations"`
	WarmupQueries   int           `json:"warmup_queries"`
	TaskTimeout     time.Duration `json:"task_timeout_ns"`
	Kinds           []KindReport  `json:"kinds"`
	Summary         SuiteSummary  `json:"summary"`
	Recommendations []string      `json:"recommendations"`
	Partial         bool          `json:"partial,omitempty"`
}
