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
)

// PerformanceSample is one measured query execution. Samples are never modified after
// they are recorded.
type PerformanceSample struct {
	Sequence    uint64             `json:"sequence"`
	Kind        fedmodel.QueryKind `json:"kind"`
	Duration    time.Duration      `json:"duration_ns"`
	WithIndex   bool               `json:"with_index"`
	Timestamp   time.Time          `json:"timestamp"`
	Success     bool               `json:"success"`
	ResultCount int                `json:"result_count"`
	Error       string             `json:"error,omitempty"`
	TimedOut    bool               `json:"timed_out,omitempty"`
}

// KindMetrics summarises the most recent samples of one query kind.
type KindMetrics struct {
	Kind          fedmodel.QueryKind `json:"kind"`
	AvgDuration   time.Duration      `json:"avg_duration_ns"`
	WindowSize    int                `json:"window_size"`
	SampleCount   int                `json:"sample_count"`
	LastTimestamp time.Time          `json:"last_timestamp"`
}

// Comparison contrasts retained samples taken with and without indexes. The
// improvement is nil when either side is empty or the without-index mean is zero.
type Comparison struct {
	Kind               fedmodel.QueryKind `json:"kind"`
	WithIndexMean      time.Duration      `json:"with_index_mean_ns"`
	WithIndexCount     int                `json:"with_index_count"`
	WithoutIndexMean   time.Duration      `json:"without_index_mean_ns"`
	WithoutIndexCount  int                `json:"without_index_count"`
	ImprovementPercent *float64           `json:"improvement_percent,omitempty"`
}

// Statistics is the distribution of a sample block. Times are in seconds and cover
// successful samples only.
type Statistics struct {
	Iterations           int     `json:"iterations"`
	SuccessfulIterations int     `json:"successful_iterations"`
	SuccessRate          float64 `json:"success_rate"`
	MinTime              float64 `json:"min_time"`
	MaxTime              float64 `json:"max_time"`
	MeanTime             float64 `json:"mean_time"`
	MedianTime           float64 `json:"median_time"`
	StdDev               float64 `json:"std_dev"`
	TotalTime            float64 `json:"total_time"`
	AvgResultCount       float64 `json:"avg_result_count"`
	TimedOutIterations   int     `json:"timed_out_iterations,omitempty"`
}
