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
	"time"

	"github.com/pkg/errors"
	"github.com/wso2/telco-query-federation/internal/system/config"
	"github.com/wso2/telco-query-federation/internal/system/constants"
	"github.com/wso2/telco-query-federation/internal/system/database/scripts"
	"github.com/wso2/telco-query-federation/internal/system/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// namespaceNotFound is returned by listIndexes for a collection that does not exist.
const namespaceNotFound = 26

const defaultConnectTimeout = 30 * time.Second

// DocumentClientInterface defines the operations the engine needs from store B.
type DocumentClientInterface interface {
	ExecuteAggregation(ctx context.Context, collection string, pipeline interface{}) ([]map[string]interface{}, error)
	CreateIndexes(ctx context.Context) error
	// DropIndexes drops every index of the collection except the default _id_ index.
	DropIndexes(ctx context.Context, collection string) error
	ListIndexes(ctx context.Context, collection string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// MongoClient is the mongo-driver implementation of DocumentClientInterface.
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoClient wraps a connected driver client.
func NewMongoClient(client *mongo.Client, databaseName string) *MongoClient {
	return &MongoClient{
		client:   client,
		database: client.Database(databaseName),
	}
}

// ConnectMongo connects to the configured deployment and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, dataAccessFault("document", errors.Wrap(err, "cannot create client"))
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, dataAccessFault("document", errors.Wrap(err, "ping failed"))
	}
	log.GetLogger().Info("Connected to document store", log.String("database", cfg.Database))
	return NewMongoClient(client, cfg.Database), nil
}

// ExecuteAggregation runs the pipeline against the collection and decodes every document.
func (m *MongoClient) ExecuteAggregation(ctx context.Context, collection string, pipeline interface{}) ([]map[string]interface{}, error) {

	cursor, err := m.database.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, dataAccessFault("document", errors.Wrapf(err, "aggregation on %s failed", collection))
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dataAccessFault("document", errors.Wrapf(err, "cannot decode aggregation on %s", collection))
	}
	rows := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, map[string]interface{}(doc))
	}
	return rows, nil
}

// CreateIndexes creates the single-field indexes of every collection.
func (m *MongoClient) CreateIndexes(ctx context.Context) error {

	logger := log.GetLogger()
	var firstErr error
	for _, collection := range constants.DocumentCollections {
		fields := scripts.DocumentIndexes[collection]
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, field := range fields {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetName(scripts.DocumentIndexName(field)),
			})
		}
		if _, err := m.database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn("Index creation failed", log.String("collection", collection), log.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "cannot create indexes on %s", collection)
			}
			continue
		}
		logger.Debug("Indexes created", log.String("collection", collection), log.Int("count", len(models)))
	}
	if firstErr != nil {
		return dataAccessFault("document", firstErr)
	}
	return nil
}

// DropIndexes drops every non-default index of the collection.
func (m *MongoClient) DropIndexes(ctx context.Context, collection string) error {

	names, err := m.ListIndexes(ctx, collection)
	if err != nil {
		return err
	}
	view := m.database.Collection(collection).Indexes()
	for _, name := range names {
		if name == constants.DefaultIndexName {
			continue
		}
		if _, err := view.DropOne(ctx, name); err != nil {
			return dataAccessFault("document", errors.Wrapf(err, "cannot drop index %s on %s", name, collection))
		}
		log.GetLogger().Debug("Index dropped", log.String("collection", collection), log.String("index", name))
	}
	return nil
}

// ListIndexes returns the index names of the collection. A missing collection has none.
func (m *MongoClient) ListIndexes(ctx context.Context, collection string) ([]string, error) {

	specs, err := m.database.Collection(collection).Indexes().ListSpecifications(ctx)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == namespaceNotFound {
			return []string{}, nil
		}
		return nil, dataAccessFault("document", errors.Wrapf(err, "cannot list indexes on %s", collection))
	}
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	return names, nil
}

// Ping checks that the primary is reachable.
func (m *MongoClient) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return dataAccessFault("document", errors.Wrap(err, "ping failed"))
	}
	return nil
}

// Close disconnects the client.
func (m *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return dataAccessFault("document", errors.Wrap(err, "disconnect failed"))
	}
	return nil
}
