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
	"strconv"
	"time"

	"github.com/wso2/telco-query-federation/internal/system/errors"
	"github.com/wso2/telco-query-federation/internal/system/utils"
)

// Parameter names accepted by QueryFromParams.
const (
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamCallType = "call_type"
	ParamSegment  = "segment"
	ParamPlanType = "plan_type"
	ParamPeriod   = "period"
	ParamLimit    = "limit"
)

// QueryFromParams builds a query of the given kind, starting from DefaultQuery and
// overriding every parameter that is present. An empty call_type, segment or plan_type
// removes that filter.
func QueryFromParams(kind QueryKind, params map[string]string, now time.Time) (Query, error) {
	base, err := DefaultQuery(kind, now)
	if err != nil {
		return nil, err
	}

	switch q := base.(type) {
	case CallAnalyticsQuery:
		if v, ok := params[ParamStart]; ok {
			if q.Start, err = parseTimeParam(ParamStart, v); err != nil {
				return nil, err
			}
		}
		if v, ok := params[ParamEnd]; ok {
			if q.End, err = parseTimeParam(ParamEnd, v); err != nil {
				return nil, err
			}
		}
		if v, ok := params[ParamCallType]; ok {
			q.CallType = v
		}
		if !q.Start.Before(q.End) {
			return nil, errors.NewFederationError(errors.CONFIGURATION_FAULT,
				"Parameter start must be before end.", nil)
		}
		return q, nil
	case CustomerInsightsQuery:
		if v, ok := params[ParamSegment]; ok {
			q.Segment = v
		}
		if v, ok := params[ParamPlanType]; ok {
			q.PlanType = v
		}
		return q, nil
	case CombinedBehaviorQuery:
		if v, ok := params[ParamPeriod]; ok {
			q.Period = v
		}
		if v, ok := params[ParamLimit]; ok {
			limit, convErr := strconv.Atoi(v)
			if convErr != nil {
				return nil, errors.NewFederationError(errors.CONFIGURATION_FAULT,
					fmt.Sprintf("Parameter limit %q is not an integer.", v), convErr)
			}
			q.Limit = limit
		}
		if v, ok := params[ParamSegment]; ok {
			q.Segment = v
		}
		return q, nil
	}
	return base, nil
}

func parseTimeParam(name, value string) (time.Time, error) {
	t, ok := utils.ToTime(value)
	if !ok {
		return time.Time{}, errors.NewFederationError(errors.CONFIGURATION_FAULT,
			fmt.Sprintf("Parameter %s %q is not a timestamp.", name, value), nil)
	}
	return t, nil
}
