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

package errors

const errorPrefix = "TQF-"

var (
	// Store faults

	DATA_ACCESS_FAULT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while accessing the backing store.",
	}

	SCHEMA_CONVERGENCE_TIMEOUT = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Index state did not converge within the allowed time.",
	}

	// Federation faults

	JOIN_INCOMPLETE = ErrorMessage{
		Code:    errorPrefix + "15101",
		Message: "Combined query could not be joined because one side failed.",
	}

	// Benchmark faults

	TASK_TIMEOUT = ErrorMessage{
		Code:    errorPrefix + "15201",
		Message: "Query execution exceeded its timeout.",
	}

	BENCHMARK_BUDGET_EXHAUSTED = ErrorMessage{
		Code:    errorPrefix + "15202",
		Message: "Benchmark wall-clock budget exhausted.",
	}

	// Client error codes

	CONFIGURATION_FAULT = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Invalid configuration or query parameters.",
	}
)
