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

package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wso2/telco-query-federation/internal/system/config"
)

const startupTimeout = 180 * time.Second

// TestStore holds a running store container and the configuration pointing at it.
type TestStore struct {
	Container testcontainers.Container
	Cassandra config.CassandraConfig
	MongoDB   config.MongoConfig
}

// Terminate stops the container.
func (s *TestStore) Terminate(ctx context.Context) error {
	return s.Container.Terminate(ctx)
}

// SetupTestCassandra starts a single-node wide-column store. The keyspace is not
// created; callers connect without one and create it themselves.
func SetupTestCassandra(ctx context.Context) (*TestStore, error) {
	req := testcontainers.ContainerRequest{
		Image:        "cassandra:4.1",
		ExposedPorts: []string{"9042/tcp"},
		Env: map[string]string{
			"MAX_HEAP_SIZE": "512M",
			"HEAP_NEWSIZE":  "128M",
		},
		WaitingFor: wait.ForLog("Starting listening for CQL clients").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start cassandra container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "9042")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	cfg := config.DefaultConfig().Cassandra
	cfg.Hosts = []string{host}
	cfg.Port = port.Int()
	cfg.Keyspace = ""
	return &TestStore{Container: container, Cassandra: cfg}, nil
}

// SetupTestMongo starts a single-node document store.
func SetupTestMongo(ctx context.Context) (*TestStore, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	cfg := config.DefaultConfig().MongoDB
	cfg.URI = fmt.Sprintf("mongodb://%s:%s/", host, port.Port())
	cfg.Database = "telco_customers_test"
	return &TestStore{Container: container, MongoDB: cfg}, nil
}
