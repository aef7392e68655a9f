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
	"fmt"
	"sort"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/wso2/telco-query-federation/internal/system/config"
	"github.com/wso2/telco-query-federation/internal/system/database/scripts"
	errors2 "github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

const cassandraDialect = "cassandra"

// WideColumnClientInterface defines the operations the engine needs from store A.
type WideColumnClientInterface interface {
	ExecuteQuery(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error)
	CreateIndexes(ctx context.Context) error
	DropIndexes(ctx context.Context) error
	// ListIndexes returns the secondary index names of the keyspace. With built set only
	// indexes whose build has completed are returned.
	ListIndexes(ctx context.Context, built bool) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// CassandraClient is the gocql implementation of WideColumnClientInterface.
type CassandraClient struct {
	session  *gocql.Session
	keyspace string
}

// NewCassandraClient wraps an existing session.
func NewCassandraClient(session *gocql.Session, keyspace string) *CassandraClient {
	return &CassandraClient{
		session:  session,
		keyspace: keyspace,
	}
}

// NewClusterConfig prepares the gocql cluster configuration for the keyspace.
func NewClusterConfig(cfg config.CassandraConfig) (*gocql.ClusterConfig, error) {

	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.Port > 0 {
		cluster.Port = cfg.Port
	}
	cluster.Keyspace = cfg.Keyspace
	cluster.ProtoVersion = 4
	cluster.ConnectTimeout = cfg.ConnectionTimeout
	cluster.Timeout = cfg.Timeout
	cluster.SerialConsistency = gocql.LocalSerial

	consistency := gocql.LocalOne
	if cfg.Consistency != "" {
		parsed, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
		if err != nil {
			return nil, errors2.NewFederationError(errors2.CONFIGURATION_FAULT,
				fmt.Sprintf("Unknown consistency level %q.", cfg.Consistency), err)
		}
		consistency = parsed
	}
	cluster.Consistency = consistency

	if cfg.Username != "" && cfg.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	return cluster, nil
}

// ConnectCassandra opens a session against the configured cluster.
func ConnectCassandra(cfg config.CassandraConfig) (*CassandraClient, error) {

	cluster, err := NewClusterConfig(cfg)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, dataAccessFault("wide-column", errors.Wrapf(err, "cannot create session for keyspace %s", cfg.Keyspace))
	}
	log.GetLogger().Info("Connected to wide-column store",
		log.Any("hosts", cfg.Hosts), log.String("keyspace", cfg.Keyspace))
	return NewCassandraClient(session, cfg.Keyspace), nil
}

// ExecuteQuery runs a CQL statement and returns the rows as column maps.
func (c *CassandraClient) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {

	rows, err := c.session.Query(statement, args...).WithContext(ctx).Iter().SliceMap()
	if err != nil {
		return nil, dataAccessFault("wide-column", errors.Wrapf(err, "query failed: %s", statement))
	}
	return rows, nil
}

// CreateIndexes creates every secondary index of the event tables. All statements are
// attempted; the first failure is returned.
func (c *CassandraClient) CreateIndexes(ctx context.Context) error {

	logger := log.GetLogger()
	var firstErr error
	for _, idx := range scripts.EventIndexes {
		if err := c.session.Query(idx.CreateIndexStatement()).WithContext(ctx).Exec(); err != nil {
			logger.Warn("Index creation failed", log.String("index", idx.Name), log.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "cannot create index %s", idx.Name)
			}
			continue
		}
		logger.Debug("Index created", log.String("index", idx.Name))
	}
	if firstErr != nil {
		return dataAccessFault("wide-column", firstErr)
	}
	return nil
}

// DropIndexes drops every secondary index of the event tables.
func (c *CassandraClient) DropIndexes(ctx context.Context) error {

	logger := log.GetLogger()
	var firstErr error
	for _, idx := range scripts.EventIndexes {
		if err := c.session.Query(idx.DropIndexStatement()).WithContext(ctx).Exec(); err != nil {
			logger.Warn("Index drop failed", log.String("index", idx.Name), log.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "cannot drop index %s", idx.Name)
			}
			continue
		}
		logger.Debug("Index dropped", log.String("index", idx.Name))
	}
	if firstErr != nil {
		return dataAccessFault("wide-column", firstErr)
	}
	return nil
}

// ListIndexes reads index names from the schema tables. Defined indexes come from
// system_schema.indexes; built indexes from system."IndexInfo", whose partition key
// holds the keyspace name.
func (c *CassandraClient) ListIndexes(ctx context.Context, built bool) ([]string, error) {

	statement := scripts.SelectDefinedIndexes[cassandraDialect]
	if built {
		statement = scripts.SelectBuiltIndexes[cassandraDialect]
	}
	rows, err := c.ExecuteQuery(ctx, statement, c.keyspace)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["index_name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Ping issues a lightweight read against system.local.
func (c *CassandraClient) Ping(ctx context.Context) error {

	_, err := c.ExecuteQuery(ctx, scripts.SelectReleaseVersion[cassandraDialect])
	return err
}

// Close closes the session.
func (c *CassandraClient) Close() error {
	if c.session != nil && !c.session.Closed() {
		c.session.Close()
	}
	return nil
}

func dataAccessFault(store string, cause error) error {
	return errors2.NewFederationError(errors2.DATA_ACCESS_FAULT,
		fmt.Sprintf("Operation on the %s store failed.", store), cause)
}
