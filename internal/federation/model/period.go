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

package model

import (
	"fmt"
	"time"

	"github.com/wso2/telco-query-federation/internal/system/errors"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// ParsePeriod resolves a period key into a half-open UTC range. YYYY-MM covers the whole
// month and YYYY-MM-DD a single day.
func ParsePeriod(key string) (time.Time, time.Time, error) {
	if t, err := time.ParseInLocation(monthLayout, key, time.UTC); err == nil && len(key) == len(monthLayout) {
		return t, t.AddDate(0, 1, 0), nil
	}
	if t, err := time.ParseInLocation(dayLayout, key, time.UTC); err == nil && len(key) == len(dayLayout) {
		return t, t.AddDate(0, 0, 1), nil
	}
	return time.Time{}, time.Time{}, errors.NewFederationError(errors.CONFIGURATION_FAULT,
		fmt.Sprintf("Period %q must be YYYY-MM or YYYY-MM-DD.", key), nil)
}

// FormatRange renders a range the way summaries report it.
func FormatRange(start, end time.Time) string {
	return start.UTC().Format(dayLayout) + " to " + end.UTC().Format(dayLayout)
}
