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
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wso2/telco-query-federation/internal/federation/model"
	"github.com/wso2/telco-query-federation/internal/system/constants"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
	"github.com/wso2/telco-query-federation/internal/system/log"
	"github.com/wso2/telco-query-federation/internal/system/utils"
)

// CustomerStoreInterface reads customer aggregates and profiles from the document store.
type CustomerStoreInterface interface {
	SegmentInsights(ctx context.Context, segment, planType string) ([]model.SegmentRow, error)
	ProfilesByIDs(ctx context.Context, customerIDs []string, segment string) ([]model.CustomerProfile, error)
}

// CustomerStore runs aggregation pipelines against the customers collection.
type CustomerStore struct {
	client client.DocumentClientInterface
}

// NewCustomerStore creates a customer store over a document client.
func NewCustomerStore(c client.DocumentClientInterface) *CustomerStore {
	return &CustomerStore{client: c}
}

// SegmentInsights groups customers by segment, plan type and city, largest groups first.
func (s *CustomerStore) SegmentInsights(ctx context.Context, segment, planType string) ([]model.SegmentRow, error) {

	rows, err := s.client.ExecuteAggregation(ctx, constants.CustomersCollection, SegmentInsightsPipeline(segment, planType))
	if err != nil {
		log.GetLogger().Debug("Failed to aggregate customer segments", log.Error(err))
		return nil, err
	}

	result := make([]model.SegmentRow, 0, len(rows))
	for _, row := range rows {
		segmentName, _ := utils.GetPath(row, "_id.segment")
		plan, _ := utils.GetPath(row, "_id.plan_type")
		city, _ := utils.GetPath(row, "_id.city")
		count, _ := utils.ToInt64(row["customer_count"])
		avgFee, _ := utils.ToFloat(row["avg_monthly_fee"])
		avgScore, _ := utils.ToFloat(row["avg_credit_score"])
		revenue, _ := utils.ToDecimal(row["total_revenue"])
		billing, _ := utils.ToInt64(row["total_billing_records"])
		result = append(result, model.SegmentRow{
			Segment:             utils.ToString(segmentName),
			PlanType:            utils.ToString(plan),
			City:                utils.ToString(city),
			CustomerCount:       count,
			AvgMonthlyFee:       roundTwo(avgFee),
			AvgCreditScore:      roundTwo(avgScore),
			TotalRevenue:        revenue.Round(2),
			TotalBillingRecords: billing,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.CustomerCount != b.CustomerCount {
			return a.CustomerCount > b.CustomerCount
		}
		if a.Segment != b.Segment {
			return a.Segment < b.Segment
		}
		if a.PlanType != b.PlanType {
			return a.PlanType < b.PlanType
		}
		return a.City < b.City
	})
	return result, nil
}

// ProfilesByIDs looks up the profiles of the given customers. A customer with several
// subscriptions is reported once, with the first subscription returned.
func (s *CustomerStore) ProfilesByIDs(ctx context.Context, customerIDs []string, segment string) ([]model.CustomerProfile, error) {

	if len(customerIDs) == 0 {
		return []model.CustomerProfile{}, nil
	}
	rows, err := s.client.ExecuteAggregation(ctx, constants.CustomersCollection, CustomerProfilesPipeline(customerIDs, segment))
	if err != nil {
		log.GetLogger().Debug("Failed to look up customer profiles", log.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	result := make([]model.CustomerProfile, 0, len(rows))
	for _, row := range rows {
		customerID := utils.ToString(row["customer_id"])
		if customerID == "" || seen[customerID] {
			continue
		}
		seen[customerID] = true
		result = append(result, toCustomerProfile(customerID, row))
	}
	return result, nil
}

func toCustomerProfile(customerID string, row map[string]interface{}) model.CustomerProfile {
	firstName, _ := utils.GetPath(row, "personal_info.first_name")
	lastName, _ := utils.GetPath(row, "personal_info.last_name")
	plan, _ := utils.GetPath(row, "subscription.plan_type")
	city, _ := utils.GetPath(row, "location.city")
	billing, _ := utils.ToInt64(row["billing_count"])

	profile := model.CustomerProfile{
		CustomerID:     customerID,
		Name:           strings.TrimSpace(utils.ToString(firstName) + " " + utils.ToString(lastName)),
		Segment:        utils.ToString(row["customer_segment"]),
		PlanType:       utils.ToString(plan),
		City:           utils.ToString(city),
		Status:         utils.ToString(row["status"]),
		MonthlyFee:     decimal.Zero,
		BillingRecords: billing,
	}
	if rawFee, ok := utils.GetPath(row, "subscription.monthly_fee"); ok && rawFee != nil {
		if fee, ok := utils.ToDecimal(rawFee); ok {
			profile.MonthlyFee = fee
			profile.HasMonthlyFee = true
		}
	}
	return profile
}
