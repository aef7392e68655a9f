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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	benchmodel "github.com/wso2/telco-query-federation/internal/benchmark/model"
	fedmodel "github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/system/config"
	"github.com/wso2/telco-query-federation/internal/system/errors"
)

type MockWideColumnClient struct {
	mock.Mock
}

func (m *MockWideColumnClient) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	called := m.Called(statement, args)
	rows, _ := called.Get(0).([]map[string]interface{})
	return rows, called.Error(1)
}

func (m *MockWideColumnClient) CreateIndexes(ctx context.Context) error { return m.Called().Error(0) }

func (m *MockWideColumnClient) DropIndexes(ctx context.Context) error { return m.Called().Error(0) }

func (m *MockWideColumnClient) ListIndexes(ctx context.Context, built bool) ([]string, error) {
	called := m.Called(built)
	names, _ := called.Get(0).([]string)
	return names, called.Error(1)
}

func (m *MockWideColumnClient) Ping(ctx context.Context) error { return m.Called().Error(0) }

func (m *MockWideColumnClient) Close() error { return m.Called().Error(0) }

type MockDocumentClient struct {
	mock.Mock
}

func (m *MockDocumentClient) ExecuteAggregation(ctx context.Context, collection string, pipeline interface{}) ([]map[string]interface{}, error) {
	called := m.Called(collection, pipeline)
	rows, _ := called.Get(0).([]map[string]interface{})
	return rows, called.Error(1)
}

func (m *MockDocumentClient) CreateIndexes(ctx context.Context) error { return m.Called().Error(0) }

func (m *MockDocumentClient) DropIndexes(ctx context.Context, collection string) error {
	return m.Called(collection).Error(0)
}

func (m *MockDocumentClient) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	called := m.Called(collection)
	names, _ := called.Get(0).([]string)
	return names, called.Error(1)
}

func (m *MockDocumentClient) Ping(ctx context.Context) error { return m.Called().Error(0) }

func (m *MockDocumentClient) Close() error { return m.Called().Error(0) }

func segmentRows() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"_id":                   map[string]interface{}{"segment": "Premium", "plan_type": "Unlimited", "city": "Dhaka"},
			"customer_count":        int32(4),
			"avg_monthly_fee":       79.99,
			"avg_credit_score":      712.5,
			"total_revenue":         "1279.84",
			"total_billing_records": int32(16),
		},
	}
}

func newTestEngine() (*EngineManager, *MockWideColumnClient, *MockDocumentClient) {
	wide := &MockWideColumnClient{}
	doc := &MockDocumentClient{}
	cfg := config.DefaultConfig()
	cfg.Benchmark.HistoryCapacity = 50
	return NewEngineManagerWithClients(wide, doc, cfg), wide, doc
}

func TestExecuteQuery_RecordsEveryExecution(t *testing.T) {
	engine, _, doc := newTestEngine()
	doc.On("ExecuteAggregation", mock.Anything, mock.Anything).Return(segmentRows(), nil)

	result := engine.ExecuteQuery(context.Background(), fedmodel.CustomerInsights, map[string]string{"segment": "Premium"})

	require.True(t, result.Succeeded(), result.Error)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, int64(4), result.Segments[0].CustomerCount)
	assert.NotEmpty(t, result.TraceID)

	history := engine.RecentHistory(10)
	require.Len(t, history, 1)
	assert.Equal(t, fedmodel.CustomerInsights, history[0].Kind)
	assert.True(t, history[0].Success)
	assert.True(t, history[0].WithIndex)
	assert.Equal(t, 1, history[0].ResultCount)

	metrics := engine.LatestMetrics()
	require.Contains(t, metrics, fedmodel.CustomerInsights)
	assert.Equal(t, 1, metrics[fedmodel.CustomerInsights].SampleCount)

	comparison := engine.Compare(fedmodel.CustomerInsights)
	assert.Equal(t, 1, comparison.WithIndexCount)
	assert.Nil(t, comparison.ImprovementPercent)
}

func TestExecuteQuery_InvalidParametersAreNotExecuted(t *testing.T) {
	engine, _, doc := newTestEngine()

	result := engine.ExecuteQuery(context.Background(), fedmodel.CombinedBehavior, map[string]string{"limit": "many"})

	assert.False(t, result.Succeeded())
	assert.True(t, errors.HasCode(result.Err, errors.CONFIGURATION_FAULT))
	assert.Empty(t, engine.RecentHistory(10))
	doc.AssertNotCalled(t, "ExecuteAggregation", mock.Anything, mock.Anything)
}

func TestExecuteQuery_StoreFailureIsRecordedAsFailedSample(t *testing.T) {
	engine, _, doc := newTestEngine()
	doc.On("ExecuteAggregation", mock.Anything, mock.Anything).
		Return(nil, errors.NewFederationError(errors.DATA_ACCESS_FAULT, "mongodb unavailable", nil))

	result := engine.ExecuteQuery(context.Background(), fedmodel.CustomerInsights, nil)

	assert.False(t, result.Succeeded())
	history := engine.RecentHistory(1)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.NotEmpty(t, history[0].Error)
}

func TestRunBenchmark_RefusesWhenStoresAreNotReady(t *testing.T) {
	engine, wide, doc := newTestEngine()
	wide.On("Ping").Return(errors.NewFederationError(errors.DATA_ACCESS_FAULT, "no hosts", nil))
	doc.On("Ping").Return(nil)

	report, err := engine.RunBenchmark(context.Background(), nil, 1)

	require.Error(t, err)
	assert.Empty(t, report.Kinds)
	wide.AssertNotCalled(t, "DropIndexes")
}

func TestRunBenchmark_AdHocSamplesFollowIndexStateLeftByTheRun(t *testing.T) {
	wide := &MockWideColumnClient{}
	doc := &MockDocumentClient{}
	cfg := config.DefaultConfig()
	cfg.Benchmark.Iterations = 5
	cfg.Benchmark.SkipWarmup = true
	cfg.Benchmark.IterationDelay = 0
	cfg.Benchmark.ConcurrentWorkers = 1
	cfg.Benchmark.MaxQPS = 0
	cfg.Benchmark.TaskTimeout = time.Second
	cfg.Benchmark.ConvergenceTimeout = time.Second
	cfg.Benchmark.ConvergenceInitialInterval = 10 * time.Millisecond
	engine := NewEngineManagerWithClients(wide, doc, cfg)

	wide.On("Ping").Return(nil)
	doc.On("Ping").Return(nil)
	wide.On("DropIndexes").Return(nil)
	doc.On("DropIndexes", mock.Anything).Return(nil)
	wide.On("ListIndexes", false).Return([]string{}, nil)
	doc.On("ListIndexes", mock.Anything).Return([]string{"_id_"}, nil)
	wide.On("CreateIndexes").Return(errors.NewFederationError(errors.DATA_ACCESS_FAULT, "create index", nil))
	doc.On("ExecuteAggregation", mock.Anything, mock.Anything).Return(segmentRows(), nil)

	report, err := engine.RunBenchmark(context.Background(), []fedmodel.QueryKind{fedmodel.CustomerInsights}, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Iterations)
	require.Len(t, report.Kinds, 1)
	comparison := report.Kinds[0].Comparison
	assert.Equal(t, benchmodel.PhaseFailed, comparison.State)
	assert.Contains(t, comparison.Error, "indexes were left dropped")
	require.NotNil(t, report.Kinds[0].Concurrent)
	for _, sample := range report.Kinds[0].Concurrent.Samples {
		assert.False(t, sample.WithIndex)
	}

	result := engine.ExecuteQuery(context.Background(), fedmodel.CustomerInsights, nil)

	require.True(t, result.Succeeded(), result.Error)
	history := engine.RecentHistory(1)
	require.Len(t, history, 1)
	assert.False(t, history[0].WithIndex, "the stores are still unindexed after the run")
}

func TestReadiness_ReportsBothStores(t *testing.T) {
	engine, wide, doc := newTestEngine()
	wide.On("Ping").Return(nil)
	doc.On("Ping").Return(nil)

	readiness, err := engine.Readiness(context.Background())

	require.NoError(t, err)
	assert.True(t, readiness.Ready)
	assert.Len(t, readiness.Stores, 2)
}

func TestClose_ClosesBothClients(t *testing.T) {
	engine, wide, doc := newTestEngine()
	wide.On("Close").Return(nil)
	doc.On("Close").Return(nil)

	require.NoError(t, engine.Close())
	wide.AssertExpectations(t)
	doc.AssertExpectations(t)
}

func TestNewEngineManagerWithClients_UsesConfiguredHistoryCapacity(t *testing.T) {
	engine, _, _ := newTestEngine()
	assert.Equal(t, 50, engine.recorder.Capacity())
	assert.Equal(t, 30*time.Second, engine.cfg.Federation.QueryTimeout)
}
