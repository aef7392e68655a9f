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
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wso2/telco-query-federation/internal/system/constants"
)

// SegmentInsightsPipeline builds the store-B aggregation for segment insights. The
// segment filter runs before the lookups and the plan filter right after the
// subscription is unwound, so both apply before grouping.
func SegmentInsightsPipeline(segment, planType string) bson.A {
	pipeline := bson.A{}
	if segment != "" {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"customer_segment": segment}})
	}
	pipeline = append(pipeline,
		lookupStage(constants.SubscriptionsCollection, "subscription"),
		bson.M{"$unwind": "$subscription"},
	)
	if planType != "" {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"subscription.plan_type": planType}})
	}
	pipeline = append(pipeline,
		lookupStage(constants.BillingCollection, "billing_history"),
		bson.M{"$group": bson.M{
			"_id": bson.M{
				"segment":   "$customer_segment",
				"plan_type": "$subscription.plan_type",
				"city":      "$location.city",
			},
			"customer_count":        bson.M{"$sum": 1},
			"avg_monthly_fee":       bson.M{"$avg": "$subscription.monthly_fee"},
			"avg_credit_score":      bson.M{"$avg": "$credit_score"},
			"total_revenue":         bson.M{"$sum": "$subscription.monthly_fee"},
			"total_billing_records": bson.M{"$sum": bson.M{"$size": "$billing_history"}},
		}},
		bson.M{"$sort": bson.D{
			{Key: "customer_count", Value: -1},
			{Key: "_id.segment", Value: 1},
			{Key: "_id.plan_type", Value: 1},
			{Key: "_id.city", Value: 1},
		}},
	)
	return pipeline
}

// CustomerProfilesPipeline builds the store-B lookup of exactly the candidate customer
// ids, optionally restricted to one segment.
func CustomerProfilesPipeline(customerIDs []string, segment string) bson.A {
	match := bson.M{"customer_id": bson.M{"$in": customerIDs}}
	if segment != "" {
		match["customer_segment"] = segment
	}
	return bson.A{
		bson.M{"$match": match},
		lookupStage(constants.SubscriptionsCollection, "subscription"),
		bson.M{"$unwind": "$subscription"},
		lookupStage(constants.BillingCollection, "billing_history"),
		bson.M{"$project": bson.M{
			"customer_id":              1,
			"personal_info.first_name": 1,
			"personal_info.last_name":  1,
			"customer_segment":         1,
			"location.city":            1,
			"subscription.plan_type":   1,
			"subscription.monthly_fee": 1,
			"status":                   1,
			"billing_count":            bson.M{"$size": "$billing_history"},
		}},
	}
}

func lookupStage(from, as string) bson.M {
	return bson.M{"$lookup": bson.M{
		"from":         from,
		"localField":   "customer_id",
		"foreignField": "customer_id",
		"as":           as,
	}}
}
