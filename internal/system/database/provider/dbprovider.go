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

package provider

import (
	"context"

	"github.com/wso2/telco-query-federation/internal/system/config"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
)

// DBProviderInterface defines the interface for getting store clients.
type DBProviderInterface interface {
	GetWideColumnClient() (client.WideColumnClientInterface, error)
	GetDocumentClient(ctx context.Context) (client.DocumentClientInterface, error)
}

// DBProvider builds store clients from a configuration snapshot.
type DBProvider struct {
	config config.Config
}

// NewDBProvider creates a provider bound to the runtime configuration.
func NewDBProvider() DBProviderInterface {

	return &DBProvider{config: config.GetRuntime().Config}
}

// GetWideColumnClient connects to the wide-column store.
func (d *DBProvider) GetWideColumnClient() (client.WideColumnClientInterface, error) {

	return client.ConnectCassandra(d.config.Cassandra)
}

// GetDocumentClient connects to the document store.
func (d *DBProvider) GetDocumentClient(ctx context.Context) (client.DocumentClientInterface, error) {

	return client.ConnectMongo(ctx, d.config.MongoDB)
}
