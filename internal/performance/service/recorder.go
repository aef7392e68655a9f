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
	"time"

	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/performance/model"
	"github.com/wso2/telco-query-federation/internal/system/constants"
)

// DefaultCapacity is used when a recorder is created with a non-positive capacity.
const DefaultCapacity = 1000

// MetricRecorderInterface captures query timings in a bounded history.
type MetricRecorderInterface interface {
	Record(kind fedmodel.QueryKind, duration time.Duration, withIndex bool) model.PerformanceSample
	RecordSample(sample model.PerformanceSample) model.PerformanceSample
	RecentSamples(n int) []model.PerformanceSample
	LatestMetrics() map[fedmodel.QueryKind]model.KindMetrics
	Compare(kind fedmodel.QueryKind) model.Comparison
	Len() int
	Capacity() int
}

// MetricRecorder keeps samples in a fixed-size ring. Appends and reads are serialised by
// one mutex; once full, each append evicts the oldest sample.
type MetricRecorder struct {
	mu       sync.Mutex
	samples  []model.PerformanceSample
	head     int
	size     int
	sequence uint64
	now      func() time.Time
}

// NewMetricRecorder creates a recorder retaining at most capacity samples.
func NewMetricRecorder(capacity int) *MetricRecorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MetricRecorder{
		samples: make([]model.PerformanceSample, capacity),
		now:     time.Now,
	}
}

// Record appends a successful sample for the kind.
func (r *MetricRecorder) Record(kind fedmodel.QueryKind, duration time.Duration, withIndex bool) model.PerformanceSample {
	return r.RecordSample(model.PerformanceSample{
		Kind:      kind,
		Duration:  duration,
		WithIndex: withIndex,
		Success:   true,
	})
}

// RecordSample appends a sample, assigning its sequence number and, when unset, its
// timestamp. The stored copy is returned.
func (r *MetricRecorder) RecordSample(sample model.PerformanceSample) model.PerformanceSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence++
	sample.Sequence = r.sequence
	if sample.Timestamp.IsZero() {
		sample.Timestamp = r.now()
	}

	capacity := len(r.samples)
	if r.size < capacity {
		r.samples[(r.head+r.size)%capacity] = sample
		r.size++
	} else {
		r.samples[r.head] = sample
		r.head = (r.head + 1) % capacity
	}
	return sample
}

// RecentSamples returns up to n samples, most recent first.
func (r *MetricRecorder) RecentSamples(n int) []model.PerformanceSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return []model.PerformanceSample{}
	}
	capacity := len(r.samples)
	result := make([]model.PerformanceSample, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.head + r.size - 1 - i) % capacity
		result = append(result, r.samples[idx])
	}
	return result
}

// LatestMetrics averages the most recent samples of every kind present in the history.
func (r *MetricRecorder) LatestMetrics() map[fedmodel.QueryKind]model.KindMetrics {
	snapshot := r.snapshot()

	byKind := make(map[fedmodel.QueryKind][]model.PerformanceSample)
	for _, sample := range snapshot {
		byKind[sample.Kind] = append(byKind[sample.Kind], sample)
	}

	result := make(map[fedmodel.QueryKind]model.KindMetrics, len(byKind))
	for kind, samples := range byKind {
		window := samples
		if len(window) > constants.LatestMetricsWindow {
			window = window[len(window)-constants.LatestMetricsWindow:]
		}
		var total time.Duration
		for _, sample := range window {
			total += sample.Duration
		}
		result[kind] = model.KindMetrics{
			Kind:          kind,
			AvgDuration:   total / time.Duration(len(window)),
			WindowSize:    len(window),
			SampleCount:   len(samples),
			LastTimestamp: samples[len(samples)-1].Timestamp,
		}
	}
	return result
}

// Compare partitions the retained samples of the kind by index state.
func (r *MetricRecorder) Compare(kind fedmodel.QueryKind) model.Comparison {
	snapshot := r.snapshot()

	var withTotal, withoutTotal time.Duration
	comparison := model.Comparison{Kind: kind}
	for _, sample := range snapshot {
		if sample.Kind != kind {
			continue
		}
		if sample.WithIndex {
			withTotal += sample.Duration
			comparison.WithIndexCount++
		} else {
			withoutTotal += sample.Duration
			comparison.WithoutIndexCount++
		}
	}
	if comparison.WithIndexCount > 0 {
		comparison.WithIndexMean = withTotal / time.Duration(comparison.WithIndexCount)
	}
	if comparison.WithoutIndexCount > 0 {
		comparison.WithoutIndexMean = withoutTotal / time.Duration(comparison.WithoutIndexCount)
	}
	if comparison.WithIndexCount > 0 && comparison.WithoutIndexCount > 0 && comparison.WithoutIndexMean > 0 {
		improvement := ImprovementPercent(comparison.WithoutIndexMean.Seconds(), comparison.WithIndexMean.Seconds())
		comparison.ImprovementPercent = improvement
	}
	return comparison
}

// Len returns the number of retained samples.
func (r *MetricRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the maximum number of retained samples.
func (r *MetricRecorder) Capacity() int {
	return len(r.samples)
}

// snapshot copies the retained samples in insertion order.
func (r *MetricRecorder) snapshot() []model.PerformanceSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	capacity := len(r.samples)
	result := make([]model.PerformanceSample, 0, r.size)
	for i := 0; i < r.size; i++ {
		result = append(result, r.samples[(r.head+i)%capacity])
	}
	return result
}
