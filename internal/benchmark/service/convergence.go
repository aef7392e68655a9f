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
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/wso2/telco-query-federation/internal/system/constants"
	tracectx "github.com/wso2/telco-query-federation/internal/system/context"
	"github.com/wso2/telco-query-federation/internal/system/database/client"
	"github.com/wso2/telco-query-federation/internal/system/database/scripts"
	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/log"
)

const maxPollInterval = 5 * time.Second

var errNotConverged = pkgerrors.New("index state has not converged")

// IndexManagerInterface toggles the secondary indexes of both stores and waits until
// each store reports the new state.
type IndexManagerInterface interface {
	DropIndexes(ctx context.Context) error
	CreateIndexes(ctx context.Context) error
	AwaitDropped(ctx context.Context) error
	AwaitBuilt(ctx context.Context) error
}

// IndexManager implements IndexManagerInterface over the two store clients.
type IndexManager struct {
	wideColumn      client.WideColumnClientInterface
	document        client.DocumentClientInterface
	timeout         time.Duration
	initialInterval time.Duration
}

// NewIndexManager creates an index manager. Convergence waits give up after timeout.
func NewIndexManager(wideColumn client.WideColumnClientInterface, document client.DocumentClientInterface,
	timeout, initialInterval time.Duration) *IndexManager {

	if initialInterval <= 0 {
		initialInterval = 200 * time.Millisecond
	}
	return &IndexManager{
		wideColumn:      wideColumn,
		document:        document,
		timeout:         timeout,
		initialInterval: initialInterval,
	}
}

// DropIndexes drops the event indexes and every non-default collection index.
func (m *IndexManager) DropIndexes(ctx context.Context) error {

	auditIndexChange(ctx, log.ActionDropIndexes)
	if err := m.wideColumn.DropIndexes(ctx); err != nil {
		return err
	}
	for _, collection := range constants.DocumentCollections {
		if err := m.document.DropIndexes(ctx, collection); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes creates the indexes of both stores.
func (m *IndexManager) CreateIndexes(ctx context.Context) error {

	auditIndexChange(ctx, log.ActionCreateIndexes)
	if err := m.wideColumn.CreateIndexes(ctx); err != nil {
		return err
	}
	return m.document.CreateIndexes(ctx)
}

// AwaitDropped waits until no event index is defined and every collection is left with
// its default index only.
func (m *IndexManager) AwaitDropped(ctx context.Context) error {

	expected := scripts.EventIndexNames()
	return m.await(ctx, "index drop", func(ctx context.Context) (bool, error) {
		defined, err := m.wideColumn.ListIndexes(ctx, false)
		if err != nil {
			return false, err
		}
		if len(intersect(defined, expected)) > 0 {
			return false, nil
		}
		for _, collection := range constants.DocumentCollections {
			names, err := m.document.ListIndexes(ctx, collection)
			if err != nil {
				return false, err
			}
			for _, name := range names {
				if name != constants.DefaultIndexName {
					return false, nil
				}
			}
		}
		return true, nil
	})
}

// AwaitBuilt waits until every event index reports as built and every collection lists
// all of its indexes.
func (m *IndexManager) AwaitBuilt(ctx context.Context) error {

	expected := scripts.EventIndexNames()
	return m.await(ctx, "index build", func(ctx context.Context) (bool, error) {
		built, err := m.wideColumn.ListIndexes(ctx, true)
		if err != nil {
			return false, err
		}
		if len(intersect(built, expected)) != len(expected) {
			return false, nil
		}
		for _, collection := range constants.DocumentCollections {
			names, err := m.document.ListIndexes(ctx, collection)
			if err != nil {
				return false, err
			}
			want := make([]string, 0, len(scripts.DocumentIndexes[collection]))
			for _, field := range scripts.DocumentIndexes[collection] {
				want = append(want, scripts.DocumentIndexName(field))
			}
			if len(intersect(names, want)) != len(want) {
				return false, nil
			}
		}
		return true, nil
	})
}

// await polls converged with exponential backoff until it reports true or the
// convergence timeout elapses. Listing errors are retried like an unconverged state.
func (m *IndexManager) await(ctx context.Context, description string,
	converged func(ctx context.Context) (bool, error)) error {

	logger := log.GetLogger()
	waitCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.initialInterval
	policy.MaxInterval = maxPollInterval
	policy.MaxElapsedTime = m.timeout

	began := time.Now()
	polls := 0
	var lastErr error
	operation := func() error {
		polls++
		ok, err := converged(waitCtx)
		if err != nil {
			lastErr = err
			return err
		}
		if !ok {
			return errNotConverged
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Debug("Waiting for "+description, log.Int("poll", polls), log.Duration("next", next), log.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, waitCtx), notify); err != nil {
		cause := err
		if lastErr != nil {
			cause = pkgerrors.Wrap(lastErr, err.Error())
		}
		return errors.NewFederationError(errors.SCHEMA_CONVERGENCE_TIMEOUT,
			fmt.Sprintf("The %s did not converge within %s.", description, m.timeout), cause)
	}
	logger.Info("Index state converged", log.String("operation", description),
		log.Int("polls", polls), log.Duration("elapsed", time.Since(began)))
	return nil
}

func intersect(actual, expected []string) []string {
	present := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		present[name] = struct{}{}
	}
	var result []string
	for _, name := range expected {
		if _, ok := present[name]; ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

func auditIndexChange(ctx context.Context, action string) {
	logger := log.GetLogger()
	for _, target := range []string{log.TargetTypeWideColumnStore, log.TargetTypeDocumentStore} {
		logger.Audit(log.AuditEvent{
			InitiatorID:   "benchmark-harness",
			InitiatorType: log.InitiatorTypeSystem,
			TargetID:      tracectx.GetRunID(ctx),
			TargetType:    target,
			ActionID:      action,
			TraceID:       tracectx.GetTraceID(ctx),
		})
	}
}
