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
	"math"

	"github.com/montanaflynn/stats"
	"github.com/wso2/telco-query-federation/internal/performance/model"
)

// Summarize computes the distribution of the successful samples of a block. The
// standard deviation is the sample deviation and is zero for fewer than two samples.
func Summarize(samples []model.PerformanceSample) model.Statistics {
	result := model.Statistics{Iterations: len(samples)}
	if len(samples) == 0 {
		return result
	}

	durations := make(stats.Float64Data, 0, len(samples))
	resultCounts := make(stats.Float64Data, 0, len(samples))
	for _, sample := range samples {
		if sample.TimedOut {
			result.TimedOutIterations++
		}
		if !sample.Success {
			continue
		}
		durations = append(durations, sample.Duration.Seconds())
		resultCounts = append(resultCounts, float64(sample.ResultCount))
	}

	result.SuccessfulIterations = len(durations)
	result.SuccessRate = float64(len(durations)) / float64(len(samples)) * 100
	if len(durations) == 0 {
		return result
	}

	result.MinTime, _ = stats.Min(durations)
	result.MaxTime, _ = stats.Max(durations)
	result.MeanTime, _ = stats.Mean(durations)
	result.MedianTime, _ = stats.Median(durations)
	result.TotalTime, _ = stats.Sum(durations)
	result.AvgResultCount, _ = stats.Mean(resultCounts)
	if len(durations) > 1 {
		result.StdDev, _ = stats.StandardDeviationSample(durations)
	}
	return result
}

// ImprovementPercent returns how much faster the indexed mean is relative to the
// unindexed mean, or nil when the unindexed mean is not positive.
func ImprovementPercent(withoutMean, withMean float64) *float64 {
	if withoutMean <= 0 || math.IsNaN(withoutMean) || math.IsNaN(withMean) {
		return nil
	}
	improvement := (withoutMean - withMean) / withoutMean * 100
	return &improvement
}

// SpeedupFactor returns withoutMean / withMean, or nil when either mean is not positive.
func SpeedupFactor(withoutMean, withMean float64) *float64 {
	if withoutMean <= 0 || withMean <= 0 {
		return nil
	}
	speedup := withoutMean / withMean
	return &speedup
}
