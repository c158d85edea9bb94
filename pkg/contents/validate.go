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
	"bytes"
	"encoding/json"
)

// modelStringFields must be present and JSON strings.
var modelStringFields = []string{"name", "path", "type", "created", "last_modified"}

// modelNullableFields must be present but may be null.
var modelNullableFields = []string{"mimetype", "content", "format"}

// decodeModel validates the shape of a content model body and decodes it.
// Validation happens before the payload is trusted: a malformed body fails
// the whole call and nothing is returned.
func decodeModel(body []byte) (*Model, error) {
	raw, err := decodeObject(body, "file model")
	if err != nil {
		return nil, err
	}

	for _, field := range modelStringFields {
		value, ok := raw[field]
		if !ok {
			return nil, &ValidationError{Entity: "file model", Field: field, Detail: "missing"}
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, &ValidationError{Entity: "file model", Field: field, Detail: "must be a string"}
		}
	}
	for _, field := range modelNullableFields {
		if _, ok := raw[field]; !ok {
			return nil, &ValidationError{Entity: "file model", Field: field, Detail: "missing"}
		}
	}

	var model Model
	if err := json.Unmarshal(body, &model); err != nil {
		return nil, &ValidationError{Entity: "file model", Detail: err.Error()}
	}
	return &model, nil
}

// decodeCheckpoint validates and decodes a single checkpoint body.
func decodeCheckpoint(body []byte) (*Checkpoint, error) {
	raw, err := decodeObject(body, "checkpoint")
	if err != nil {
		return nil, err
	}
	return checkpointFromObject(raw)
}

// decodeCheckpointList validates a checkpoint listing. A top-level body
// that is not an array fails with ErrCheckpointListNotArray; an array with
// a malformed item fails with a ValidationError naming the bad field.
func decodeCheckpointList(body []byte) ([]Checkpoint, error) {
	// json.Unmarshal accepts a null body into a slice without error, so
	// the array check has to look at the token itself.
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrCheckpointListNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, ErrCheckpointListNotArray
	}

	checkpoints := make([]Checkpoint, 0, len(items))
	for _, item := range items {
		raw, err := decodeObject(item, "checkpoint")
		if err != nil {
			return nil, err
		}
		cp, err := checkpointFromObject(raw)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, *cp)
	}
	return checkpoints, nil
}

func checkpointFromObject(raw map[string]json.RawMessage) (*Checkpoint, error) {
	var cp Checkpoint
	for field, target := range map[string]*string{
		"id":            &cp.ID,
		"last_modified": &cp.LastModified,
	} {
		value, ok := raw[field]
		if !ok {
			return nil, &ValidationError{Entity: "checkpoint", Field: field, Detail: "missing"}
		}
		if err := json.Unmarshal(value, target); err != nil {
			return nil, &ValidationError{Entity: "checkpoint", Field: field, Detail: "must be a string"}
		}
	}
	return &cp, nil
}

func decodeObject(body []byte, entity string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Entity: entity, Detail: "body is not a JSON object"}
	}
	// A null body unmarshals into a nil map without error
	if raw == nil {
		return nil, &ValidationError{Entity: entity, Detail: "body is not a JSON object"}
	}
	return raw, nil
}
