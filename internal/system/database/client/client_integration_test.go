//go:build integration

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

package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/telco-query-federation/internal/system/database/scripts"
	"github.com/wso2/telco-query-federation/test/setup"
	"go.mongodb.org/mongo-driver/bson"
)

const testKeyspace = "telco_cdr_test"

var testTables = []string{
	`CREATE TABLE IF NOT EXISTS telco_cdr_test.call_records (call_id UUID PRIMARY KEY, caller_id TEXT,
		call_start_time TIMESTAMP, duration_seconds INT, call_type TEXT, cost_amount DECIMAL, network_type TEXT)`,
	`CREATE TABLE IF NOT EXISTS telco_cdr_test.sms_records (sms_id UUID PRIMARY KEY, sender_id TEXT,
		sent_time TIMESTAMP, network_type TEXT)`,
	`CREATE TABLE IF NOT EXISTS telco_cdr_test.data_usage (usage_id UUID PRIMARY KEY, customer_id TEXT,
		session_start TIMESTAMP, app_category TEXT)`,
}

func TestCassandraClient_Integration(t *testing.T) {
	ctx := context.Background()
	store, err := setup.SetupTestCassandra(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Terminate(ctx) })

	cluster, err := NewClusterConfig(store.Cassandra)
	require.NoError(t, err)
	cluster.Timeout = 30 * time.Second
	bootstrap, err := cluster.CreateSession()
	require.NoError(t, err)
	require.NoError(t, bootstrap.Query(`CREATE KEYSPACE IF NOT EXISTS telco_cdr_test WITH REPLICATION =
		{'class': 'SimpleStrategy', 'replication_factor': 1}`).Exec())
	for _, stmt := range testTables {
		require.NoError(t, bootstrap.Query(stmt).Exec())
	}
	require.NoError(t, bootstrap.Query(`INSERT INTO telco_cdr_test.call_records
		(call_id, caller_id, call_start_time, duration_seconds, call_type, cost_amount, network_type)
		VALUES (uuid(), 'C1', '2024-01-10 10:00:00+0000', 60, 'voice', 1.50, '4G')`).Exec())
	bootstrap.Close()

	cfg := store.Cassandra
	cfg.Keyspace = testKeyspace
	c, err := ConnectCassandra(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(ctx))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows, err := c.ExecuteQuery(ctx, scripts.SelectCallRecordsInRangeByType["cassandra"], start, end, "voice")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C1", rows[0]["caller_id"])

	require.NoError(t, c.CreateIndexes(ctx))
	defined, err := c.ListIndexes(ctx, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, scripts.EventIndexNames(), defined)

	require.NoError(t, c.DropIndexes(ctx))
	defined, err = c.ListIndexes(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, defined)
}

func TestMongoClient_Integration(t *testing.T) {
	ctx := context.Background()
	store, err := setup.SetupTestMongo(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Terminate(ctx) })

	m, err := ConnectMongo(ctx, store.MongoDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	_, err = m.database.Collection("customers").InsertOne(ctx, bson.M{
		"customer_id":      "C1",
		"customer_segment": "premium",
	})
	require.NoError(t, err)

	require.NoError(t, m.Ping(ctx))

	rows, err := m.ExecuteAggregation(ctx, "customers", bson.A{
		bson.M{"$match": bson.M{"customer_segment": "premium"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C1", rows[0]["customer_id"])

	missing, err := m.ListIndexes(ctx, "customer_support")
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, m.CreateIndexes(ctx))
	names, err := m.ListIndexes(ctx, "customers")
	require.NoError(t, err)
	assert.Contains(t, names, "_id_")
	assert.Contains(t, names, scripts.DocumentIndexName("customer_segment"))

	require.NoError(t, m.DropIndexes(ctx, "customers"))
	names, err = m.ListIndexes(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"_id_"}, names)
}
