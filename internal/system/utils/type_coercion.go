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

package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wso2/telco-query-federation/internal/system/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store drivers hand rows back as loosely typed maps: gocql picks the Go type from the
// column type, the document driver picks it from the BSON type (int32, int64, double,
// Decimal128 or nested documents). The helpers below coerce those values into the
// shapes the federation layer works with.

// GetPath resolves a dotted path such as "personal_info.first_name" inside nested maps.
func GetPath(row map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = row
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case primitive.M:
		return v, true
	case primitive.D:
		m := make(map[string]interface{}, len(v))
		for _, elem := range v {
			m[elem.Key] = elem.Value
		}
		return m, true
	default:
		return nil, false
	}
}

// ToString converts a value to its string representation. Nil becomes "".
func ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToInt64 converts a numeric value to int64. Decimals are truncated.
func ToInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, true
		}
		logCoercionMiss(value, "integer")
		return 0, false
	default:
		if d, ok := ToDecimal(value); ok {
			return d.IntPart(), true
		}
		logCoercionMiss(value, "integer")
		return 0, false
	}
}

// ToFloat converts a numeric value to float64.
func ToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		logCoercionMiss(value, "float")
		return 0, false
	default:
		if d, ok := ToDecimal(value); ok {
			return d.InexactFloat64(), true
		}
		logCoercionMiss(value, "float")
		return 0, false
	}
}

// ToDecimal converts a value to an exact decimal. Values implementing fmt.Stringer
// (gocql's *inf.Dec, BSON Decimal128) are parsed from their string form.
func ToDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	case fmt.Stringer:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// ToTime converts a timestamp value. Strings are accepted in RFC3339 and date-only form.
func ToTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case interface{ Time() time.Time }:
		return v.Time().UTC(), true
	case string:
		formats := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, v); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func logCoercionMiss(value interface{}, target string) {
	log.GetLogger().Debug(fmt.Sprintf("Cannot coerce type %T to %s", value, target))
}
