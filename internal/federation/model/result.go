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

	"github.com/shopspring/decimal"
)

// AggregatedMetricRow is one (event type, network type) group of store-A events.
type AggregatedMetricRow struct {
	CallType    string          `json:"call_type"`
	NetworkType string          `json:"network_type"`
	CallCount   int64           `json:"call_count"`
	AvgDuration float64         `json:"avg_duration"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// SegmentRow is one (segment, plan type, city) group of store-B customers.
type SegmentRow struct {
	Segment             string          `json:"segment"`
	PlanType            string          `json:"plan_type"`
	City                string          `json:"city"`
	CustomerCount       int64           `json:"customer_count"`
	AvgMonthlyFee       float64         `json:"avg_monthly_fee"`
	AvgCreditScore      float64         `json:"avg_credit_score"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalBillingRecords int64           `json:"total_billing_records"`
}

// CustomerActivity is the per-customer store-A aggregate for a period.
type CustomerActivity struct {
	CustomerID    string
	TotalCalls    int64
	TotalDuration int64
	TotalCost     decimal.Decimal
}

// CustomerProfile is the store-B view of one customer used by the combined query.
type CustomerProfile struct {
	CustomerID     string
	Name           string
	Segment        string
	PlanType       string
	City           string
	Status         string
	MonthlyFee     decimal.Decimal
	HasMonthlyFee  bool
	BillingRecords int64
}

// JoinedBehaviorRecord exists only for customers present on both sides of the join.
type JoinedBehaviorRecord struct {
	CustomerID        string          `json:"customer_id"`
	Name              string          `json:"name"`
	Segment           string          `json:"segment"`
	PlanType          string          `json:"plan_type"`
	City              string          `json:"city"`
	Status            string          `json:"status"`
	MonthlyFee        decimal.Decimal `json:"monthly_fee"`
	TotalCalls        int64           `json:"total_calls"`
	TotalCallDuration int64           `json:"total_call_duration"`
	TotalCallCost     decimal.Decimal `json:"total_call_cost"`
	UsageEfficiency   decimal.Decimal `json:"usage_efficiency"`
	BillingRecords    int64           `json:"billing_records"`
}

// Summary holds the totals of a result. Fields that do not apply to the kind are zero.
type Summary struct {
	TotalCalls         int64           `json:"total_calls,omitempty"`
	TotalCustomers     int64           `json:"total_customers,omitempty"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	SegmentsAnalyzed   int             `json:"segments_analyzed,omitempty"`
	AvgUsageEfficiency decimal.Decimal `json:"avg_usage_efficiency"`
	Period             string          `json:"period,omitempty"`
	CandidateCount     int             `json:"candidate_count,omitempty"`
	JoinedCount        int             `json:"joined_count,omitempty"`
}

// QueryResult is the outcome of one query execution. On failure Err is set and every
// record list is nil.
type QueryResult struct {
	Kind          QueryKind              `json:"kind"`
	TraceID       string                 `json:"trace_id,omitempty"`
	CallMetrics   []AggregatedMetricRow  `json:"call_metrics,omitempty"`
	Segments      []SegmentRow           `json:"segments,omitempty"`
	Behaviors     []JoinedBehaviorRecord `json:"behaviors,omitempty"`
	Summary       Summary                `json:"summary"`
	ExecutionTime time.Duration          `json:"execution_time_ns"`
	Error         string                 `json:"error,omitempty"`
	Err           error                  `json:"-"`
}

// FailedResult builds the failure form of a result.
func FailedResult(kind QueryKind, traceID string, elapsed time.Duration, err error) QueryResult {
	return QueryResult{
		Kind:          kind,
		TraceID:       traceID,
		ExecutionTime: elapsed,
		Error:         err.Error(),
		Err:           err,
	}
}

// Succeeded reports whether the execution completed without a captured error.
func (r QueryResult) Succeeded() bool {
	return r.Err == nil && r.Error == ""
}

// RecordCount returns the number of records of the result's kind.
func (r QueryResult) RecordCount() int {
	switch r.Kind {
	case CallAnalytics:
		return len(r.CallMetrics)
	case CustomerInsights:
		return len(r.Segments)
	case CombinedBehavior:
		return len(r.Behaviors)
	default:
		return 0
	}
}
