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

package scripts

import "github.com/wso2/telco-query-federation/internal/system/constants"

// Statements are keyed by store dialect, mirroring how relational scripts are kept per
// driver. Aggregation happens in the application because CQL cannot group on
// non-key columns.

var SelectCallRecordsInRange = map[string]string{
	"cassandra": `SELECT caller_id, call_type, network_type, call_start_time, duration_seconds, cost_amount
       FROM call_records WHERE call_start_time >= ? AND call_start_time < ? ALLOW FILTERING`,
}

var SelectCallRecordsInRangeByType = map[string]string{
	"cassandra": `SELECT caller_id, call_type, network_type, call_start_time, duration_seconds, cost_amount
       FROM call_records WHERE call_start_time >= ? AND call_start_time < ? AND call_type = ? ALLOW FILTERING`,
}

var SelectCallerActivityInRange = map[string]string{
	"cassandra": `SELECT caller_id, call_start_time, duration_seconds, cost_amount
       FROM call_records WHERE call_start_time >= ? AND call_start_time < ? ALLOW FILTERING`,
}

var SelectDefinedIndexes = map[string]string{
	"cassandra": `SELECT index_name FROM system_schema.indexes WHERE keyspace_name = ?`,
}

var SelectBuiltIndexes = map[string]string{
	"cassandra": `SELECT index_name FROM system."IndexInfo" WHERE table_name = ?`,
}

var SelectReleaseVersion = map[string]string{
	"cassandra": `SELECT release_version FROM system.local`,
}

// SecondaryIndex describes one secondary index on a store-A table.
type SecondaryIndex struct {
	Name   string
	Table  string
	Column string
}

// EventIndexes are the secondary indexes toggled during an index-impact run.
var EventIndexes = []SecondaryIndex{
	{Name: "call_records_caller_idx", Table: constants.CallRecordsTable, Column: "caller_id"},
	{Name: "call_records_start_time_idx", Table: constants.CallRecordsTable, Column: "call_start_time"},
	{Name: "call_records_type_idx", Table: constants.CallRecordsTable, Column: "call_type"},
	{Name: "call_records_network_idx", Table: constants.CallRecordsTable, Column: "network_type"},
	{Name: "sms_records_sender_idx", Table: constants.SmsRecordsTable, Column: "sender_id"},
	{Name: "sms_records_sent_time_idx", Table: constants.SmsRecordsTable, Column: "sent_time"},
	{Name: "sms_records_network_idx", Table: constants.SmsRecordsTable, Column: "network_type"},
	{Name: "data_usage_customer_idx", Table: constants.DataUsageTable, Column: "customer_id"},
	{Name: "data_usage_start_time_idx", Table: constants.DataUsageTable, Column: "session_start"},
	{Name: "data_usage_category_idx", Table: constants.DataUsageTable, Column: "app_category"},
}

// CreateIndexStatement renders the idempotent CQL for creating the index.
func (i SecondaryIndex) CreateIndexStatement() string {
	return "CREATE INDEX IF NOT EXISTS " + i.Name + " ON " + i.Table + " (" + i.Column + ")"
}

// DropIndexStatement renders the idempotent CQL for dropping the index.
func (i SecondaryIndex) DropIndexStatement() string {
	return "DROP INDEX IF EXISTS " + i.Name
}

// EventIndexNames returns the names of all store-A secondary indexes.
func EventIndexNames() []string {
	names := make([]string, 0, len(EventIndexes))
	for _, idx := range EventIndexes {
		names = append(names, idx.Name)
	}
	return names
}

// DocumentIndexes lists the single-field ascending indexes per store-B collection.
var DocumentIndexes = map[string][]string{
	constants.CustomersCollection:       {"customer_id", "phone_number", "registration_date", "status", "location.city", "customer_segment"},
	constants.SubscriptionsCollection:   {"customer_id", "plan_type", "start_date", "status", "monthly_fee"},
	constants.BillingCollection:         {"customer_id", "billing_month", "payment_status", "payment_date", "amount"},
	constants.CustomerSupportCollection: {"customer_id", "ticket_date", "status", "issue_type", "priority"},
}

// DocumentIndexName returns the name the document store assigns to a single-field
// ascending index.
func DocumentIndexName(field string) string {
	return field + "_1"
}
