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

package constants

type contextKey string

const TraceIDContextKey contextKey = "trace_id"
const RunIDContextKey contextKey = "run_id"

// Store A (wide-column) tables.
const (
	CallRecordsTable = "call_records"
	SmsRecordsTable  = "sms_records"
	DataUsageTable   = "data_usage"
)

// Store B (document) collections.
const (
	CustomersCollection       = "customers"
	SubscriptionsCollection   = "subscriptions"
	BillingCollection         = "billing"
	CustomerSupportCollection = "customer_support"
)

// DocumentCollections lists the collections whose secondary indexes take part in a
// benchmark.
var DocumentCollections = []string{
	CustomersCollection,
	SubscriptionsCollection,
	BillingCollection,
	CustomerSupportCollection,
}

// DefaultIndexName is never dropped from a document collection.
const DefaultIndexName = "_id_"

const (
	// LatestMetricsWindow is the number of most recent samples per query kind that
	// LatestMetrics averages over.
	LatestMetricsWindow = 10
	// TasksPerWorker is the number of concurrent-load tasks dispatched per worker.
	TasksPerWorker = 2
	// MoneyScale is the number of decimal places money and percentages are rounded to.
	MoneyScale = 2
)
