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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wso2/telco-query-federation/internal/system/errors"
)

type MockWideColumnClient struct {
	mock.Mock
}

func (m *MockWideColumnClient) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (m *MockWideColumnClient) CreateIndexes(ctx context.Context) error { return nil }

func (m *MockWideColumnClient) DropIndexes(ctx context.Context) error { return nil }

func (m *MockWideColumnClient) ListIndexes(ctx context.Context, built bool) ([]string, error) {
	return nil, nil
}

func (m *MockWideColumnClient) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWideColumnClient) Close() error { return nil }

type MockDocumentClient struct {
	mock.Mock
}

func (m *MockDocumentClient) ExecuteAggregation(ctx context.Context, collection string, pipeline interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (m *MockDocumentClient) CreateIndexes(ctx context.Context) error { return nil }

func (m *MockDocumentClient) DropIndexes(ctx context.Context, collection string) error { return nil }

func (m *MockDocumentClient) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	return nil, nil
}

func (m *MockDocumentClient) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockDocumentClient) Close() error { return nil }

func TestCheckReadiness_BothStoresUp(t *testing.T) {
	wide := &MockWideColumnClient{}
	doc := &MockDocumentClient{}
	wide.On("Ping").Return(nil)
	doc.On("Ping").Return(nil)

	readiness, err := NewHealthCheckService(wide, doc).CheckReadiness(context.Background())

	require.NoError(t, err)
	assert.True(t, readiness.Ready)
	require.Len(t, readiness.Stores, 2)
	assert.Equal(t, WideColumnStore, readiness.Stores[0].Store)
	assert.Equal(t, DocumentStore, readiness.Stores[1].Store)
}

func TestCheckReadiness_ProbesBothStoresWhenOneIsDown(t *testing.T) {
	wide := &MockWideColumnClient{}
	doc := &MockDocumentClient{}
	wide.On("Ping").Return(errors.NewFederationError(errors.DATA_ACCESS_FAULT, "no hosts available", nil))
	doc.On("Ping").Return(nil)

	readiness, err := NewHealthCheckService(wide, doc).CheckReadiness(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), WideColumnStore)
	assert.True(t, errors.HasCode(err, errors.DATA_ACCESS_FAULT))
	assert.False(t, readiness.Ready)
	assert.False(t, readiness.Stores[0].Ready)
	assert.NotEmpty(t, readiness.Stores[0].Error)
	assert.True(t, readiness.Stores[1].Ready)
	doc.AssertExpectations(t)
}
