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
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/performance/model"
)

func TestProperty_RecorderEvictsOldestFirst(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("retains exactly the most recent capacity samples", prop.ForAll(
		func(capacity int, extra int) bool {
			recorder := NewMetricRecorder(capacity)
			total := capacity + extra
			for i := 1; i <= total; i++ {
				recorder.Record(fedmodel.CallAnalytics, time.Duration(i), false)
			}
			if recorder.Len() != capacity {
				return false
			}
			recent := recorder.RecentSamples(total)
			if len(recent) != capacity {
				return false
			}
			for i, sample := range recent {
				if sample.Duration != time.Duration(total-i) || sample.Sequence != uint64(total-i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}

func TestRecentSamples(t *testing.T) {
	recorder := NewMetricRecorder(5)
	assert.Empty(t, recorder.RecentSamples(3))

	for i := 1; i <= 3; i++ {
		recorder.Record(fedmodel.CustomerInsights, time.Duration(i)*time.Millisecond, i%2 == 0)
	}

	recent := recorder.RecentSamples(2)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(3), recent[0].Sequence)
	assert.Equal(t, uint64(2), recent[1].Sequence)
	assert.True(t, recent[1].WithIndex)
	assert.False(t, recent[0].Timestamp.IsZero())

	assert.Len(t, recorder.RecentSamples(10), 3)
	assert.Empty(t, recorder.RecentSamples(0))
	assert.Equal(t, 5, recorder.Capacity())
	assert.Equal(t, DefaultCapacity, NewMetricRecorder(0).Capacity())
}

func TestLatestMetrics_AveragesLastTen(t *testing.T) {
	recorder := NewMetricRecorder(100)
	for i := 1; i <= 15; i++ {
		recorder.Record(fedmodel.CallAnalytics, time.Duration(i)*time.Second, false)
	}
	recorder.Record(fedmodel.CombinedBehavior, 4*time.Second, true)

	metrics := recorder.LatestMetrics()
	require.Len(t, metrics, 2)

	calls := metrics[fedmodel.CallAnalytics]
	assert.Equal(t, 10, calls.WindowSize)
	assert.Equal(t, 15, calls.SampleCount)
	// samples 6..15
	assert.Equal(t, 10500*time.Millisecond, calls.AvgDuration)

	combined := metrics[fedmodel.CombinedBehavior]
	assert.Equal(t, 1, combined.WindowSize)
	assert.Equal(t, 4*time.Second, combined.AvgDuration)
}

func TestCompare(t *testing.T) {
	recorder := NewMetricRecorder(10)
	recorder.Record(fedmodel.CallAnalytics, time.Second, false)
	recorder.Record(fedmodel.CallAnalytics, 3*time.Second, false)

	onlyWithout := recorder.Compare(fedmodel.CallAnalytics)
	assert.Equal(t, 2, onlyWithout.WithoutIndexCount)
	assert.Equal(t, 2*time.Second, onlyWithout.WithoutIndexMean)
	assert.Nil(t, onlyWithout.ImprovementPercent)

	recorder.Record(fedmodel.CallAnalytics, 500*time.Millisecond, true)
	both := recorder.Compare(fedmodel.CallAnalytics)
	require.NotNil(t, both.ImprovementPercent)
	assert.InDelta(t, 75.0, *both.ImprovementPercent, 1e-9)

	assert.Nil(t, recorder.Compare(fedmodel.CustomerInsights).ImprovementPercent)
}

func TestCompare_ZeroWithoutMeanOmitsImprovement(t *testing.T) {
	recorder := NewMetricRecorder(10)
	recorder.Record(fedmodel.CallAnalytics, 0, false)
	recorder.Record(fedmodel.CallAnalytics, time.Second, true)

	assert.Nil(t, recorder.Compare(fedmodel.CallAnalytics).ImprovementPercent)
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	recorder := NewMetricRecorder(1000)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				recorder.Record(fedmodel.CombinedBehavior, time.Millisecond, w%2 == 0)
				_ = recorder.RecentSamples(5)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, recorder.Len())
	seen := make(map[uint64]bool)
	for _, sample := range recorder.RecentSamples(1000) {
		assert.False(t, seen[sample.Sequence])
		seen[sample.Sequence] = true
	}
	assert.True(t, seen[1600])
}

func TestSummarize(t *testing.T) {
	samples := []model.PerformanceSample{
		{Duration: 1 * time.Second, Success: true, ResultCount: 4},
		{Duration: 2 * time.Second, Success: true, ResultCount: 2},
		{Duration: 3 * time.Second, Success: true, ResultCount: 0},
		{Duration: 0, Success: false, TimedOut: true},
	}

	result := Summarize(samples)
	assert.Equal(t, 4, result.Iterations)
	assert.Equal(t, 3, result.SuccessfulIterations)
	assert.Equal(t, 1, result.TimedOutIterations)
	assert.InDelta(t, 75.0, result.SuccessRate, 1e-9)
	assert.InDelta(t, 1.0, result.MinTime, 1e-9)
	assert.InDelta(t, 3.0, result.MaxTime, 1e-9)
	assert.InDelta(t, 2.0, result.MeanTime, 1e-9)
	assert.InDelta(t, 2.0, result.MedianTime, 1e-9)
	assert.InDelta(t, 1.0, result.StdDev, 1e-9)
	assert.InDelta(t, 6.0, result.TotalTime, 1e-9)
	assert.InDelta(t, 2.0, result.AvgResultCount, 1e-9)
}

func TestSummarize_EdgeCases(t *testing.T) {
	assert.Equal(t, model.Statistics{}, Summarize(nil))

	single := Summarize([]model.PerformanceSample{{Duration: time.Second, Success: true}})
	assert.Equal(t, 0.0, single.StdDev)
	assert.InDelta(t, 1.0, single.MeanTime, 1e-9)

	failed := Summarize([]model.PerformanceSample{{Success: false}})
	assert.Equal(t, 0, failed.SuccessfulIterations)
	assert.Equal(t, 0.0, failed.SuccessRate)
}

func TestImprovementAndSpeedup(t *testing.T) {
	improvement := ImprovementPercent(1.0, 0.2)
	require.NotNil(t, improvement)
	assert.InDelta(t, 80.0, *improvement, 1e-9)

	speedup := SpeedupFactor(1.0, 0.2)
	require.NotNil(t, speedup)
	assert.InDelta(t, 5.0, *speedup, 1e-9)

	assert.Nil(t, ImprovementPercent(0, 0.2))
	assert.Nil(t, SpeedupFactor(1.0, 0))
}
