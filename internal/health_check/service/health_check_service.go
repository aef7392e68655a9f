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
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

const (
	WideColumnStore = "cassandra"
	DocumentStore   = "mongodb"
)

// StoreStatus is the outcome of pinging one store.
type StoreStatus struct {
	Store   string        `json:"store"`
	Ready   bool          `json:"ready"`
	Latency time.Duration `json:"latency_ns"`
	Error   string        `json:"error,omitempty"`
}

// Readiness reports whether both stores answered.
type Readiness struct {
	Ready  bool          `json:"ready"`
	Stores []StoreStatus `json:"stores"`
}

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) (Readiness, error)
}

// HealthCheckService is the default implementation.
type HealthCheckService struct {
	wideColumn client.WideColumnClientInterface
	document   client.DocumentClientInterface
}

// NewHealthCheckService returns a readiness checker over both store clients.
func NewHealthCheckService(wideColumn client.WideColumnClientInterface,
	document client.DocumentClientInterface) HealthCheckServiceInterface {

	return &HealthCheckService{wideColumn: wideColumn, document: document}
}

// CheckReadiness pings both stores. Both are always probed; the returned error names the
// first store that did not answer.
func (h *HealthCheckService) CheckReadiness(ctx context.Context) (Readiness, error) {
	logger := log.GetLogger()

	readiness := Readiness{Ready: true}
	var firstErr error
	for _, probe := range []struct {
		store string
		ping  func(context.Context) error
	}{
		{WideColumnStore, h.wideColumn.Ping},
		{DocumentStore, h.document.Ping},
	} {
		began := time.Now()
		err := probe.ping(ctx)
		status := StoreStatus{Store: probe.store, Ready: err == nil, Latency: time.Since(began)}
		if err != nil {
			status.Error = err.Error()
			readiness.Ready = false
			if firstErr == nil {
				firstErr = pkgerrors.Wrapf(err, "%s connectivity check failed", probe.store)
			}
			logger.Warn("Store is not ready", log.String("store", probe.store), log.Error(err))
		} else {
			logger.Debug("Store is ready", log.String("store", probe.store), log.Duration("latency", status.Latency))
		}
		readiness.Stores = append(readiness.Stores, status)
	}
	return readiness, firstErr
}
