// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package contents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoBaseURL is returned synchronously, before any request is made, when
// the connection settings carry an empty base URL.
var ErrNoBaseURL = errors.New("contents: no server base URL configured")

// ErrCheckpointListNotArray reports a checkpoint listing whose top-level
// body is not a JSON array. It is distinct from a per-item shape failure.
var ErrCheckpointListNotArray = errors.New("contents: checkpoint list response is not a JSON array")

// ResponseError reports an HTTP status that does not match the one the
// operation expects. The remote API gives no reliable status semantics
// beyond the happy path, so no finer classification is attempted.
type ResponseError struct {
	// StatusCode is the status the server answered with
	StatusCode int

	// Message is the human-readable message extracted from the body, if any
	Message string

	// Body is the raw response body for caller inspection
	Body []byte
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("contents: server returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("contents: server returned status %d", e.StatusCode)
}

// newResponseError extracts the "message" field Jupyter servers put into
// JSON error bodies, falling back to the raw body text.
func newResponseError(statusCode int, body []byte) *ResponseError {
	respErr := &ResponseError{
		StatusCode: statusCode,
		Body:       body,
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		respErr.Message = payload.Message
	} else {
		respErr.Message = strings.TrimSpace(string(body))
	}

	return respErr
}

// ValidationError reports a successful-status response whose body does not
// have the expected shape. Field names the offending field.
type ValidationError struct {
	// Entity is the payload kind being validated ("file model", "checkpoint")
	Entity string

	// Field is the offending field
	Field string

	// Detail describes the violation ("missing", "must be a string", ...)
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("contents: invalid %s: %s", e.Entity, e.Detail)
	}
	return fmt.Sprintf("contents: invalid %s: field %q %s", e.Entity, e.Field, e.Detail)
}
