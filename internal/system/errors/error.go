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

import (
	stderrors "errors"
	"fmt"
)

type ErrorMessage struct {
	Code        string `json:"error_code"`
	Message     string `json:"error_message"`
	Description string `json:"error_description"`
	TraceID     string `json:"trace_id,omitempty"`
}

// FederationError is a categorized engine fault. The code identifies the fault kind
// (data access, convergence timeout, incomplete join, configuration, task timeout).
type FederationError struct {
	ErrorMessage
	Err error
}

func (e *FederationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s %s: %v", e.Code, e.Message, e.Description, e.Err)
	}
	return fmt.Sprintf("[%s] %s %s", e.Code, e.Message, e.Description)
}

// Unwrap returns the underlying cause.
func (e *FederationError) Unwrap() error {
	return e.Err
}

// Is matches another FederationError carrying the same code.
func (e *FederationError) Is(target error) bool {
	var t *FederationError
	if stderrors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func NewFederationError(msg ErrorMessage, description string, cause error) *FederationError {
	msg.Description = description
	return &FederationError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

func NewFederationErrorWithTraceID(msg ErrorMessage, description string, cause error, traceID string) *FederationError {
	msg.Description = description
	msg.TraceID = traceID
	return &FederationError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

// HasCode reports whether any error in err's chain is a FederationError with the
// code of msg.
func HasCode(err error, msg ErrorMessage) bool {
	for err != nil {
		var fe *FederationError
		if !stderrors.As(err, &fe) {
			return false
		}
		if fe.Code == msg.Code {
			return true
		}
		err = fe.Err
	}
	return false
}

// CodeOf returns the code of the outermost FederationError in err's chain.
func CodeOf(err error) string {
	var fe *FederationError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
