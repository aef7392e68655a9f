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
	"fmt"
	"strings"
	"time"

	"github.com/wso2/telco-query-federation/internal/system/errors"
)

// QueryKind identifies one of the three query intents.
type QueryKind string

const (
	CallAnalytics    QueryKind = "call_analytics"
	CustomerInsights QueryKind = "customer_insights"
	CombinedBehavior QueryKind = "combined_behavior"
)

// AllQueryKinds returns the kinds in the order a full suite runs them.
func AllQueryKinds() []QueryKind {
	return []QueryKind{CallAnalytics, CustomerInsights, CombinedBehavior}
}

// ParseQueryKind validates a kind name.
func ParseQueryKind(name string) (QueryKind, error) {
	kind := QueryKind(strings.ToLower(strings.TrimSpace(name)))
	switch kind {
	case CallAnalytics, CustomerInsights, CombinedBehavior:
		return kind, nil
	default:
		return "", errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Unknown query kind %q.", name), nil)
	}
}

// Query is a closed set of query intents. Only the types in this package implement it.
type Query interface {
	Kind() QueryKind
	isQuery()
}

// CallAnalyticsQuery aggregates store-A events in [Start, End) by event and network type.
type CallAnalyticsQuery struct {
	Start    time.Time
	End      time.Time
	CallType string
}

// CustomerInsightsQuery aggregates store-B customers by segment, plan and city.
type CustomerInsightsQuery struct {
	Segment  string
	PlanType string
}

// CombinedBehaviorQuery joins per-customer activity with customer profiles.
type CombinedBehaviorQuery struct {
	// Period is either YYYY-MM or YYYY-MM-DD.
	Period  string
	Limit   int
	Segment string
}

func (CallAnalyticsQuery) Kind() QueryKind    { return CallAnalytics }
func (CustomerInsightsQuery) Kind() QueryKind { return CustomerInsights }
func (CombinedBehaviorQuery) Kind() QueryKind { return CombinedBehavior }

func (CallAnalyticsQuery) isQuery()    {}
func (CustomerInsightsQuery) isQuery() {}
func (CombinedBehaviorQuery) isQuery() {}

const (
	defaultLookback   = 30 * 24 * time.Hour
	defaultCallType   = "voice"
	defaultSegment    = "premium"
	defaultPlanType   = "postpaid"
	defaultPeriod     = "2024-01"
	DefaultQueryLimit = 50
)

// DefaultQuery returns the reference benchmark parameters for a kind, with time ranges
// ending at now.
func DefaultQuery(kind QueryKind, now time.Time) (Query, error) {
	switch kind {
	case CallAnalytics:
		return CallAnalyticsQuery{
			Start:    now.Add(-defaultLookback).UTC(),
			End:      now.UTC(),
			CallType: defaultCallType,
		}, nil
	case CustomerInsights:
		return CustomerInsightsQuery{Segment: defaultSegment, PlanType: defaultPlanType}, nil
	case CombinedBehavior:
		return CombinedBehaviorQuery{Period: defaultPeriod, Limit: DefaultQueryLimit}, nil
	default:
		return nil, errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Unknown query kind %q.", kind), nil)
	}
}
