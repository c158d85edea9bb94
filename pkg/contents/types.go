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

// Package contents provides a drive for browsing and editing files hosted
// by a remote Jupyter server through its contents REST API
package contents

// Entry types understood by the contents API.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeNotebook  = "notebook"
)

// Serialization formats understood by the contents API.
const (
	FormatText   = "text"
	FormatBase64 = "base64"
	FormatJSON   = "json"
)

// Model describes a file, directory or notebook as reported by the remote
// server. Every Model handed out by the drive has passed shape validation.
type Model struct {
	// Name is the base name of the entry
	Name string `json:"name"`

	// Path is the full API path of the entry, POSIX-style and slash-separated
	Path string `json:"path"`

	// Type is the entry category: "file", "directory" or "notebook"
	Type string `json:"type"`

	// Created is the creation timestamp reported by the server
	Created string `json:"created"`

	// LastModified is the last-modified timestamp reported by the server
	LastModified string `json:"last_modified"`

	// Mimetype is the mimetype of the content, null for directories
	Mimetype *string `json:"mimetype"`

	// Content holds the entry content when it was requested: a string for
	// files, a list of child models for directories, a document for notebooks
	Content any `json:"content"`

	// Format is the serialization format of Content, null when absent
	Format *string `json:"format"`
}

// Checkpoint is one server-retained restore point for a file. It is only
// addressable through the (path, ID) pair it was created for.
type Checkpoint struct {
	// ID is the opaque, server-assigned checkpoint identifier
	ID string `json:"id"`

	// LastModified is the timestamp the checkpoint was taken at
	LastModified string `json:"last_modified"`
}

// FetchOptions narrows what a Get call asks the server for.
type FetchOptions struct {
	// Type requests a specific entry category ("file", "directory", "notebook")
	Type string

	// Format requests a serialization format for the content. It is dropped
	// for notebook fetches: the remote API rejects it for that type.
	Format string

	// Content controls whether the server includes the entry content
	Content bool
}

// CreateOptions describes a NewUntitled request.
type CreateOptions struct {
	// Path is the directory the new entry is created in
	Path string `json:"path,omitempty"`

	// Ext is the file extension. A non-empty extension missing its leading
	// dot gets one prepended; case is preserved.
	Ext string `json:"ext,omitempty"`

	// Type is the entry category to create
	Type string `json:"type,omitempty"`
}

// SaveOptions is the partial model sent by Save. Content must be included
// when saving a file.
type SaveOptions struct {
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ChangeType tags a change event emitted after a successful mutation.
type ChangeType string

const (
	ChangeNew    ChangeType = "new"
	ChangeDelete ChangeType = "delete"
	ChangeRename ChangeType = "rename"
	ChangeSave   ChangeType = "save"
)

// ChangedArgs is the payload delivered to change listeners. OldValue and
// NewValue are never both populated for "new" and "delete" events.
type ChangedArgs struct {
	Type     ChangeType
	OldValue *Model
	NewValue *Model
}
