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
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
	"github.com/wso2/telco-query-federation/internal/system/database/scripts"
	"github.com/wso2/telco-query-federation/internal/system/log"
	"github.com/wso2/telco-query-federation/internal/system/utils"
)

const cassandraDialect = "cassandra"

// EventStoreInterface reads event aggregates from the wide-column store.
type EventStoreInterface interface {
	AggregateCalls(ctx context.Context, start, end time.Time, callType string) ([]model.AggregatedMetricRow, error)
	CustomerActivity(ctx context.Context, start, end time.Time) ([]model.CustomerActivity, error)
}

// EventStore aggregates call records in the application.
type EventStore struct {
	client client.WideColumnClientInterface
}

// NewEventStore creates an event store over a wide-column client.
func NewEventStore(c client.WideColumnClientInterface) *EventStore {
	return &EventStore{client: c}
}

type callGroupKey struct {
	callType    string
	networkType string
}

type callGroup struct {
	count    int64
	duration int64
	cost     decimal.Decimal
}

// AggregateCalls groups the calls started in [start, end) by call type and network type.
// The type filter, when set, is part of the statement and is enforced again per row.
func (s *EventStore) AggregateCalls(ctx context.Context, start, end time.Time, callType string) ([]model.AggregatedMetricRow, error) {

	var rows []map[string]interface{}
	var err error
	if callType != "" {
		rows, err = s.client.ExecuteQuery(ctx, scripts.SelectCallRecordsInRangeByType[cassandraDialect], start, end, callType)
	} else {
		rows, err = s.client.ExecuteQuery(ctx, scripts.SelectCallRecordsInRange[cassandraDialect], start, end)
	}
	if err != nil {
		log.GetLogger().Debug("Failed to read call records", log.Error(err))
		return nil, err
	}

	groups := make(map[callGroupKey]*callGroup)
	for _, row := range rows {
		if !startedWithin(row, start, end) {
			continue
		}
		key := callGroupKey{
			callType:    utils.ToString(row["call_type"]),
			networkType: utils.ToString(row["network_type"]),
		}
		if callType != "" && key.callType != callType {
			continue
		}
		group, ok := groups[key]
		if !ok {
			group = &callGroup{cost: decimal.Zero}
			groups[key] = group
		}
		group.count++
		duration, _ := utils.ToInt64(row["duration_seconds"])
		group.duration += duration
		cost, _ := utils.ToDecimal(row["cost_amount"])
		group.cost = group.cost.Add(cost)
	}

	result := make([]model.AggregatedMetricRow, 0, len(groups))
	for key, group := range groups {
		result = append(result, model.AggregatedMetricRow{
			CallType:    key.callType,
			NetworkType: key.networkType,
			CallCount:   group.count,
			AvgDuration: roundTwo(float64(group.duration) / float64(group.count)),
			TotalCost:   group.cost.Round(2),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CallType != result[j].CallType {
			return result[i].CallType < result[j].CallType
		}
		return result[i].NetworkType < result[j].NetworkType
	})
	return result, nil
}

// CustomerActivity totals calls per caller for calls started in [start, end). The
// result is ordered by customer id.
func (s *EventStore) CustomerActivity(ctx context.Context, start, end time.Time) ([]model.CustomerActivity, error) {

	rows, err := s.client.ExecuteQuery(ctx, scripts.SelectCallerActivityInRange[cassandraDialect], start, end)
	if err != nil {
		log.GetLogger().Debug("Failed to read caller activity", log.Error(err))
		return nil, err
	}

	activity := make(map[string]*model.CustomerActivity)
	for _, row := range rows {
		if !startedWithin(row, start, end) {
			continue
		}
		customerID := utils.ToString(row["caller_id"])
		if customerID == "" {
			continue
		}
		entry, ok := activity[customerID]
		if !ok {
			entry = &model.CustomerActivity{CustomerID: customerID, TotalCost: decimal.Zero}
			activity[customerID] = entry
		}
		entry.TotalCalls++
		duration, _ := utils.ToInt64(row["duration_seconds"])
		entry.TotalDuration += duration
		cost, _ := utils.ToDecimal(row["cost_amount"])
		entry.TotalCost = entry.TotalCost.Add(cost)
	}

	result := make([]model.CustomerActivity, 0, len(activity))
	for _, entry := range activity {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})
	return result, nil
}

// startedWithin reports whether the row's start time falls in [start, end). Rows without
// a readable start time are kept since the statement already filtered on it.
func startedWithin(row map[string]interface{}, start, end time.Time) bool {
	startedAt, ok := utils.ToTime(row["call_start_time"])
	if !ok {
		return true
	}
	return !startedAt.Before(start) && startedAt.Before(end)
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
