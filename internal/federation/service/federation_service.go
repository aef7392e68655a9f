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
	"time"

	"github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/federation/store"
	"github.com/wso2/telco-query-federation/internal/system/config"
	tracectx "github.com/wso2/telco-query-federation/internal/system/context"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

// FederationServiceInterface runs the three query intents. Faults are captured in the
// returned result, never returned as errors.
type FederationServiceInterface interface {
	QueryStoreAAggregate(ctx context.Context, start, end time.Time, callType string) model.QueryResult
	QueryStoreBSegment(ctx context.Context, segment, planType string) model.QueryResult
	QueryCombinedBehavior(ctx context.Context, period string, limit int, segment string) model.QueryResult
	ExecuteQuery(ctx context.Context, query model.Query) model.QueryResult
}

// FederationService is the default implementation of FederationServiceInterface.
type FederationService struct {
	events          store.EventStoreInterface
	customers       store.CustomerStoreInterface
	queryTimeout    time.Duration
	overFetchFactor int
}

// NewFederationService creates a federator over the two stores.
func NewFederationService(events store.EventStoreInterface, customers store.CustomerStoreInterface,
	cfg config.FederationConfig) *FederationService {

	factor := cfg.OverFetchFactor
	if factor < 1 {
		factor = 1
	}
	return &FederationService{
		events:          events,
		customers:       customers,
		queryTimeout:    cfg.QueryTimeout,
		overFetchFactor: factor,
	}
}

// ExecuteQuery dispatches the query under the configured query timeout.
func (s *FederationService) ExecuteQuery(ctx context.Context, query model.Query) model.QueryResult {

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}
	ctx = tracectx.WithTraceID(ctx, tracectx.GetOrGenerateTraceID(ctx))

	switch q := query.(type) {
	case model.CallAnalyticsQuery:
		return s.QueryStoreAAggregate(ctx, q.Start, q.End, q.CallType)
	case model.CustomerInsightsQuery:
		return s.QueryStoreBSegment(ctx, q.Segment, q.PlanType)
	case model.CombinedBehaviorQuery:
		return s.QueryCombinedBehavior(ctx, q.Period, q.Limit, q.Segment)
	default:
		err := errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Unsupported query type %T.", query), nil)
		return model.FailedResult("", tracectx.GetTraceID(ctx), 0, err)
	}
}

// QueryStoreAAggregate groups store-A calls started in [start, end) by call and network type.
func (s *FederationService) QueryStoreAAggregate(ctx context.Context, start, end time.Time, callType string) model.QueryResult {

	began := time.Now()
	traceID := tracectx.GetOrGenerateTraceID(ctx)
	logger := log.GetLogger().With(log.String("trace_id", traceID), log.String("kind", string(model.CallAnalytics)))
	logger.Debug("Running call analytics", log.Any("start", start), log.Any("end", end), log.String("call_type", callType))

	if !start.Before(end) {
		err := errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Range start %s is not before end %s.", start, end), nil)
		return model.FailedResult(model.CallAnalytics, traceID, time.Since(began), err)
	}

	rows, err := s.events.AggregateCalls(ctx, start, end, callType)
	if err != nil {
		err = asDataAccessFault(err, "wide-column")
		logger.Error("Call analytics failed", log.Error(err))
		return model.FailedResult(model.CallAnalytics, traceID, time.Since(began), err)
	}

	result := model.QueryResult{
		Kind:          model.CallAnalytics,
		TraceID:       traceID,
		CallMetrics:   rows,
		Summary:       callSummary(rows, model.FormatRange(start, end)),
		ExecutionTime: time.Since(began),
	}
	logger.Info("Call analytics completed", log.Int("groups", len(rows)), log.Duration("elapsed", result.ExecutionTime))
	return result
}

// QueryStoreBSegment groups store-B customers by segment, plan type and city.
func (s *FederationService) QueryStoreBSegment(ctx context.Context, segment, planType string) model.QueryResult {

	began := time.Now()
	traceID := tracectx.GetOrGenerateTraceID(ctx)
	logger := log.GetLogger().With(log.String("trace_id", traceID), log.String("kind", string(model.CustomerInsights)))
	logger.Debug("Running customer insights", log.String("segment", segment), log.String("plan_type", planType))

	rows, err := s.customers.SegmentInsights(ctx, segment, planType)
	if err != nil {
		err = asDataAccessFault(err, "document")
		logger.Error("Customer insights failed", log.Error(err))
		return model.FailedResult(model.CustomerInsights, traceID, time.Since(began), err)
	}

	result := model.QueryResult{
		Kind:          model.CustomerInsights,
		TraceID:       traceID,
		Segments:      rows,
		Summary:       segmentSummary(rows),
		ExecutionTime: time.Since(began),
	}
	logger.Info("Customer insights completed", log.Int("groups", len(rows)), log.Duration("elapsed", result.ExecutionTime))
	return result
}

// QueryCombinedBehavior joins the most active callers of the period with their profiles.
// It over-fetches candidates so that customers lost in the join can be replaced, but can
// still return fewer than limit records.
func (s *FederationService) QueryCombinedBehavior(ctx context.Context, period string, limit int, segment string) model.QueryResult {

	began := time.Now()
	traceID := tracectx.GetOrGenerateTraceID(ctx)
	logger := log.GetLogger().With(log.String("trace_id", traceID), log.String("kind", string(model.CombinedBehavior)))
	logger.Debug("Running combined behavior", log.String("period", period), log.Int("limit", limit))

	start, end, err := model.ParsePeriod(period)
	if err != nil {
		return model.FailedResult(model.CombinedBehavior, traceID, time.Since(began), err)
	}
	if limit <= 0 {
		err = errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Limit must be positive, got %d.", limit), nil)
		return model.FailedResult(model.CombinedBehavior, traceID, time.Since(began), err)
	}

	activity, err := s.events.CustomerActivity(ctx, start, end)
	if err != nil {
		err = joinIncomplete(asDataAccessFault(err, "wide-column"), "wide-column")
		logger.Error("Combined behavior failed reading activity", log.Error(err))
		return model.FailedResult(model.CombinedBehavior, traceID, time.Since(began), err)
	}
	candidates := RankCandidates(activity, s.overFetchFactor*limit)

	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.CustomerID)
	}
	profiles, err := s.customers.ProfilesByIDs(ctx, ids, segment)
	if err != nil {
		err = joinIncomplete(asDataAccessFault(err, "document"), "document")
		logger.Error("Combined behavior failed reading profiles", log.Error(err))
		return model.FailedResult(model.CombinedBehavior, traceID, time.Since(began), err)
	}

	records := InnerJoin(candidates, profiles, limit)
	result := model.QueryResult{
		Kind:          model.CombinedBehavior,
		TraceID:       traceID,
		Behaviors:     records,
		Summary:       behaviorSummary(records, period, len(candidates)),
		ExecutionTime: time.Since(began),
	}
	logger.Info("Combined behavior completed",
		log.Int("candidates", len(candidates)),
		log.Int("profiles", len(profiles)),
		log.Int("joined", len(records)),
		log.Duration("elapsed", result.ExecutionTime))
	return result
}

func asDataAccessFault(err error, store string) error {
	if errors.HasCode(err, errors.DATA_ACCESS_FAULT) {
		return err
	}
	return errors.NewFederationError(errors.DATA_ACCESS_FAULT,
		fmt.Sprintf("Operation on the %s store failed.", store), err)
}

func joinIncomplete(cause error, store string) error {
	return errors.NewFederationError(errors.JOIN_INCOMPLETE,
		fmt.Sprintf("The %s side of the join failed.", store), cause)
}
