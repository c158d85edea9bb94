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

package model

import (
	"github.com/go-playground/validator/v10"
)

// CreateEntryRequest creates an untitled entry in the target directory, or
// copies an existing file into it when CopyFrom is set.
type CreateEntryRequest struct {
	Ext      string `json:"ext,omitempty"`
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=file directory notebook"`
	CopyFrom string `json:"copy_from,omitempty"`
}

func (r *CreateEntryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SaveEntryRequest writes a partial model to a path, creating the entry
// when it does not exist yet.
type SaveEntryRequest struct {
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=file directory notebook"`
	Format  string `json:"format,omitempty" validate:"omitempty,oneof=text base64 json"`
	Content any    `json:"content,omitempty"`
}

func (r *SaveEntryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RenameEntryRequest moves an entry to a new path.
type RenameEntryRequest struct {
	Path string `json:"path" validate:"required"`
}

func (r *RenameEntryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
