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
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/system/constants"
)

var hundred = decimal.NewFromInt(100)

// RankCandidates orders activity by call count descending, customer id ascending, and
// keeps at most n entries.
func RankCandidates(activity []model.CustomerActivity, n int) []model.CustomerActivity {
	ranked := make([]model.CustomerActivity, len(activity))
	copy(ranked, activity)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalCalls != ranked[j].TotalCalls {
			return ranked[i].TotalCalls > ranked[j].TotalCalls
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// UsageEfficiency is total cost as a percentage of the monthly fee, rounded to two
// places. It is zero when the fee is missing or not positive and never negative.
func UsageEfficiency(totalCost, monthlyFee decimal.Decimal, hasFee bool) decimal.Decimal {
	if !hasFee || !monthlyFee.IsPositive() {
		return decimal.Zero
	}
	efficiency := totalCost.Div(monthlyFee).Mul(hundred).Round(constants.MoneyScale)
	if efficiency.IsNegative() {
		return decimal.Zero
	}
	return efficiency
}

// InnerJoin pairs candidates with profiles by customer id. Customers missing on either
// side are dropped. The result is ordered by call count descending, customer id ascending,
// and truncated to limit.
func InnerJoin(candidates []model.CustomerActivity, profiles []model.CustomerProfile, limit int) []model.JoinedBehaviorRecord {
	byID := make(map[string]model.CustomerProfile, len(profiles))
	for _, profile := range profiles {
		if _, exists := byID[profile.CustomerID]; !exists {
			byID[profile.CustomerID] = profile
		}
	}

	joined := make([]model.JoinedBehaviorRecord, 0, len(candidates))
	for _, activity := range candidates {
		profile, ok := byID[activity.CustomerID]
		if !ok {
			continue
		}
		joined = append(joined, model.JoinedBehaviorRecord{
			CustomerID:        activity.CustomerID,
			Name:              profile.Name,
			Segment:           profile.Segment,
			PlanType:          profile.PlanType,
			City:              profile.City,
			Status:            profile.Status,
			MonthlyFee:        profile.MonthlyFee,
			TotalCalls:        activity.TotalCalls,
			TotalCallDuration: activity.TotalDuration,
			TotalCallCost:     activity.TotalCost.Round(constants.MoneyScale),
			UsageEfficiency:   UsageEfficiency(activity.TotalCost, profile.MonthlyFee, profile.HasMonthlyFee),
			BillingRecords:    profile.BillingRecords,
		})
	}

	sort.SliceStable(joined, func(i, j int) bool {
		if joined[i].TotalCalls != joined[j].TotalCalls {
			return joined[i].TotalCalls > joined[j].TotalCalls
		}
		return joined[i].CustomerID < joined[j].CustomerID
	})
	if limit >= 0 && len(joined) > limit {
		joined = joined[:limit]
	}
	return joined
}

func behaviorSummary(records []model.JoinedBehaviorRecord, period string, candidates int) model.Summary {
	summary := model.Summary{
		TotalRevenue:       decimal.Zero,
		AvgUsageEfficiency: decimal.Zero,
		Period:             period,
		CandidateCount:     candidates,
		JoinedCount:        len(records),
	}
	efficiencySum := decimal.Zero
	for _, record := range records {
		summary.TotalCalls += record.TotalCalls
		summary.TotalRevenue = summary.TotalRevenue.Add(record.TotalCallCost)
		efficiencySum = efficiencySum.Add(record.UsageEfficiency)
	}
	if len(records) > 0 {
		summary.AvgUsageEfficiency = efficiencySum.Div(decimal.NewFromInt(int64(len(records)))).Round(constants.MoneyScale)
	}
	summary.TotalRevenue = summary.TotalRevenue.Round(constants.MoneyScale)
	return summary
}

func callSummary(rows []model.AggregatedMetricRow, period string) model.Summary {
	summary := model.Summary{TotalRevenue: decimal.Zero, AvgUsageEfficiency: decimal.Zero, Period: period}
	for _, row := range rows {
		summary.TotalCalls += row.CallCount
		summary.TotalRevenue = summary.TotalRevenue.Add(row.TotalCost)
	}
	summary.TotalRevenue = summary.TotalRevenue.Round(constants.MoneyScale)
	return summary
}

func segmentSummary(rows []model.SegmentRow) model.Summary {
	summary := model.Summary{TotalRevenue: decimal.Zero, AvgUsageEfficiency: decimal.Zero}
	segments := make(map[string]struct{})
	for _, row := range rows {
		summary.TotalCustomers += row.CustomerCount
		summary.TotalRevenue = summary.TotalRevenue.Add(row.TotalRevenue)
		segments[row.Segment] = struct{}{}
	}
	summary.SegmentsAnalyzed = len(segments)
	summary.TotalRevenue = summary.TotalRevenue.Round(constants.MoneyScale)
	return summary
}
