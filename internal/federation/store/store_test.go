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

package store

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type MockWideColumnClient struct {
	mock.Mock
}

func (m *MockWideColumnClient) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	called := m.Called(statement, args)
	rows, _ := called.Get(0).([]map[string]interface{})
	return rows, called.Error(1)
}

func (m *MockWideColumnClient) CreateIndexes(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWideColumnClient) DropIndexes(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWideColumnClient) ListIndexes(ctx context.Context, built bool) ([]string, error) {
	called := m.Called(built)
	names, _ := called.Get(0).([]string)
	return names, called.Error(1)
}

func (m *MockWideColumnClient) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWideColumnClient) Close() error {
	return nil
}

type MockDocumentClient struct {
	mock.Mock
}

func (m *MockDocumentClient) ExecuteAggregation(ctx context.Context, collection string, pipeline interface{}) ([]map[string]interface{}, error) {
	called := m.Called(collection, pipeline)
	rows, _ := called.Get(0).([]map[string]interface{})
	return rows, called.Error(1)
}

func (m *MockDocumentClient) CreateIndexes(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockDocumentClient) DropIndexes(ctx context.Context, collection string) error {
	return m.Called(collection).Error(0)
}

func (m *MockDocumentClient) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	called := m.Called(collection)
	names, _ := called.Get(0).([]string)
	return names, called.Error(1)
}

func (m *MockDocumentClient) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockDocumentClient) Close() error {
	return nil
}

var (
	rangeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func callRow(caller, callType, network string, at time.Time, duration int, cost string) map[string]interface{} {
	return map[string]interface{}{
		"caller_id":        caller,
		"call_type":        callType,
		"network_type":     network,
		"call_start_time":  at,
		"duration_seconds": duration,
		"cost_amount":      decimal.RequireFromString(cost),
	}
}

func TestAggregateCalls_GroupsByTypeAndNetwork(t *testing.T) {
	at := rangeStart.Add(time.Hour)
	rows := []map[string]interface{}{
		callRow("C1", "voice", "4G", at, 60, "1.0"),
		callRow("C2", "voice", "4G", at, 120, "2.0"),
		callRow("C3", "video", "4G", at, 30, "3.0"),
	}
	client := new(MockWideColumnClient)
	client.On("ExecuteQuery", mock.Anything, mock.Anything).Return(rows, nil)

	result, err := NewEventStore(client).AggregateCalls(context.Background(), rangeStart, rangeEnd, "")
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "video", result[0].CallType)
	assert.Equal(t, int64(1), result[0].CallCount)
	assert.True(t, result[0].TotalCost.Equal(decimal.NewFromInt(3)))

	assert.Equal(t, "voice", result[1].CallType)
	assert.Equal(t, int64(2), result[1].CallCount)
	assert.Equal(t, 90.0, result[1].AvgDuration)
	assert.True(t, result[1].TotalCost.Equal(decimal.NewFromInt(3)))
}

func TestAggregateCalls_EnforcesFilterAndRange(t *testing.T) {
	rows := []map[string]interface{}{
		callRow("C1", "voice", "4G", rangeStart, 60, "1.0"),
		callRow("C2", "sms", "4G", rangeStart, 60, "5.0"),
		callRow("C3", "voice", "4G", rangeEnd, 60, "7.0"),
		callRow("C4", "voice", "5G", rangeStart.Add(-time.Second), 60, "9.0"),
	}
	client := new(MockWideColumnClient)
	client.On("ExecuteQuery", mock.Anything, []interface{}{rangeStart, rangeEnd, "voice"}).Return(rows, nil)

	result, err := NewEventStore(client).AggregateCalls(context.Background(), rangeStart, rangeEnd, "voice")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(1), result[0].CallCount)
	assert.True(t, result[0].TotalCost.Equal(decimal.NewFromInt(1)))
	client.AssertExpectations(t)
}

func TestAggregateCalls_PropagatesFault(t *testing.T) {
	fault := errors.NewFederationError(errors.DATA_ACCESS_FAULT, "down", nil)
	client := new(MockWideColumnClient)
	client.On("ExecuteQuery", mock.Anything, mock.Anything).Return(nil, fault)

	_, err := NewEventStore(client).AggregateCalls(context.Background(), rangeStart, rangeEnd, "")
	assert.True(t, errors.HasCode(err, errors.DATA_ACCESS_FAULT))
}

func TestProperty_AggregateCallsCountsMatchingRecordsInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	types := []string{"voice", "video", "sms"}
	networks := []string{"3G", "4G", "5G"}
	filters := []string{"", "voice", "video", "sms"}

	properties.Property("group counts sum to the matching in-range records regardless of row order", prop.ForAll(
		func(picks []int, filterPick int, seed int64) bool {
			filter := filters[filterPick]
			rows := make([]map[string]interface{}, 0, len(picks))
			expected := int64(0)
			for i, p := range picks {
				callType := types[p%3]
				offset := time.Duration(i) * time.Minute
				var at time.Time
				switch (p / 9) % 3 {
				case 0:
					at = rangeStart.Add(offset)
					if filter == "" || filter == callType {
						expected++
					}
				case 1:
					at = rangeStart.Add(-offset - time.Second)
				default:
					at = rangeEnd.Add(offset)
				}
				rows = append(rows, callRow("C", callType, networks[(p/3)%3], at, p, "1.25"))
			}
			shuffled := make([]map[string]interface{}, len(rows))
			copy(shuffled, rows)
			rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			first := new(MockWideColumnClient)
			first.On("ExecuteQuery", mock.Anything, mock.Anything).Return(rows, nil)
			second := new(MockWideColumnClient)
			second.On("ExecuteQuery", mock.Anything, mock.Anything).Return(shuffled, nil)

			a, errA := NewEventStore(first).AggregateCalls(context.Background(), rangeStart, rangeEnd, filter)
			b, errB := NewEventStore(second).AggregateCalls(context.Background(), rangeStart, rangeEnd, filter)
			if errA != nil || errB != nil || len(a) != len(b) {
				return false
			}
			var total int64
			for i := range a {
				if a[i].CallType != b[i].CallType || a[i].NetworkType != b[i].NetworkType ||
					a[i].CallCount != b[i].CallCount || !a[i].TotalCost.Equal(b[i].TotalCost) {
					return false
				}
				if filter != "" && a[i].CallType != filter {
					return false
				}
				total += a[i].CallCount
			}
			return total == expected && len(a) <= 9
		},
		gen.SliceOf(gen.IntRange(0, 26)),
		gen.IntRange(0, len(filters)-1),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestCustomerActivity_TotalsPerCaller(t *testing.T) {
	at := rangeStart.Add(time.Hour)
	rows := []map[string]interface{}{
		callRow("C2", "voice", "4G", at, 10, "1.10"),
		callRow("C1", "voice", "4G", at, 20, "2.20"),
		callRow("C2", "video", "5G", at, 30, "3.30"),
		callRow("", "voice", "4G", at, 30, "3.30"),
	}
	client := new(MockWideColumnClient)
	client.On("ExecuteQuery", mock.Anything, mock.Anything).Return(rows, nil)

	activity, err := NewEventStore(client).CustomerActivity(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	assert.Equal(t, "C1", activity[0].CustomerID)
	assert.Equal(t, "C2", activity[1].CustomerID)
	assert.Equal(t, int64(2), activity[1].TotalCalls)
	assert.Equal(t, int64(40), activity[1].TotalDuration)
	assert.True(t, activity[1].TotalCost.Equal(decimal.RequireFromString("4.40")))
}

func TestSegmentInsights_ConvertsAndSorts(t *testing.T) {
	rows := []map[string]interface{}{
		{
			"_id":                   bson.M{"segment": "basic", "plan_type": "prepaid", "city": "Kandy"},
			"customer_count":        int32(3),
			"avg_monthly_fee":       10.555,
			"avg_credit_score":      700.0,
			"total_revenue":         31.665,
			"total_billing_records": int32(6),
		},
		{
			"_id":                   bson.M{"segment": "premium", "plan_type": "postpaid", "city": "Colombo"},
			"customer_count":        int32(3),
			"avg_monthly_fee":       100.0,
			"avg_credit_score":      750.0,
			"total_revenue":         300.0,
			"total_billing_records": int32(9),
		},
		{
			"_id":                   bson.M{"segment": "premium", "plan_type": "postpaid", "city": "Galle"},
			"customer_count":        int64(5),
			"avg_monthly_fee":       100.0,
			"avg_credit_score":      720.0,
			"total_revenue":         500.0,
			"total_billing_records": int64(12),
		},
	}
	client := new(MockDocumentClient)
	client.On("ExecuteAggregation", "customers", SegmentInsightsPipeline("", "")).Return(rows, nil)

	result, err := NewCustomerStore(client).SegmentInsights(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "Galle", result[0].City)
	assert.Equal(t, "basic", result[1].Segment)
	assert.Equal(t, "premium", result[2].Segment)
	assert.Equal(t, int64(6), result[1].TotalBillingRecords)
	assert.True(t, result[1].TotalRevenue.Equal(decimal.RequireFromString("31.67")))
	client.AssertExpectations(t)
}

func TestSegmentInsightsPipeline_FiltersBeforeGrouping(t *testing.T) {
	pipeline := SegmentInsightsPipeline("premium", "postpaid")
	require.Len(t, pipeline, 7)

	first := pipeline[0].(bson.M)
	assert.Equal(t, bson.M{"customer_segment": "premium"}, first["$match"])
	planMatch := pipeline[3].(bson.M)
	assert.Equal(t, bson.M{"subscription.plan_type": "postpaid"}, planMatch["$match"])
	_, grouped := pipeline[5].(bson.M)["$group"]
	assert.True(t, grouped)

	assert.Len(t, SegmentInsightsPipeline("", ""), 5)
}

func TestProfilesByIDs(t *testing.T) {
	rows := []map[string]interface{}{
		{
			"customer_id":      "C1",
			"personal_info":    bson.M{"first_name": "Ada", "last_name": "Lovelace"},
			"customer_segment": "premium",
			"location":         bson.M{"city": "Colombo"},
			"subscription":     bson.M{"plan_type": "postpaid", "monthly_fee": 100.0},
			"status":           "active",
			"billing_count":    int32(4),
		},
		{
			"customer_id":  "C1",
			"subscription": bson.M{"plan_type": "prepaid", "monthly_fee": 5.0},
		},
		{
			"customer_id":  "C2",
			"subscription": bson.M{"plan_type": "prepaid"},
		},
	}
	client := new(MockDocumentClient)
	client.On("ExecuteAggregation", "customers", CustomerProfilesPipeline([]string{"C1", "C2"}, "")).Return(rows, nil)

	profiles, err := NewCustomerStore(client).ProfilesByIDs(context.Background(), []string{"C1", "C2"}, "")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "Ada Lovelace", profiles[0].Name)
	assert.Equal(t, "Colombo", profiles[0].City)
	assert.Equal(t, "postpaid", profiles[0].PlanType)
	assert.True(t, profiles[0].HasMonthlyFee)
	assert.True(t, profiles[0].MonthlyFee.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(4), profiles[0].BillingRecords)

	assert.False(t, profiles[1].HasMonthlyFee)
}

func TestProfilesByIDs_EmptyCandidates(t *testing.T) {
	client := new(MockDocumentClient)

	profiles, err := NewCustomerStore(client).ProfilesByIDs(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, profiles)
	client.AssertNotCalled(t, "ExecuteAggregation", mock.Anything, mock.Anything)
}
