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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Test creating a checkpoint
func TestCreateCheckpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected request method POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/contents/work/nb.ipynb/checkpoints" {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "cp-1", "last_modified": "2025-01-02T00:00:00Z"}`))
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	var events []ChangedArgs
	drive.Changed().Connect(func(args ChangedArgs) {
		events = append(events, args)
	})

	cp, err := drive.CreateCheckpoint("work/nb.ipynb")
	if err != nil {
		t.Fatalf("failed to create checkpoint: %v", err)
	}
	if cp.ID != "cp-1" {
		t.Errorf("expected checkpoint id 'cp-1', got '%s'", cp.ID)
	}
	if cp.LastModified != "2025-01-02T00:00:00Z" {
		t.Errorf("unexpected last_modified '%s'", cp.LastModified)
	}
	if len(events) != 0 {
		t.Errorf("expected checkpoint creation to emit no change event, got %d", len(events))
	}
}

// Test listing checkpoints in server order
func TestListCheckpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected request method GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[
			{"id": "cp-2", "last_modified": "2025-01-03T00:00:00Z"},
			{"id": "cp-1", "last_modified": "2025-01-02T00:00:00Z"}
		]`))
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	checkpoints, err := drive.ListCheckpoints("work/nb.ipynb")
	if err != nil {
		t.Fatalf("failed to list checkpoints: %v", err)
	}
	if len(checkpoints) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(checkpoints))
	}
	if checkpoints[0].ID != "cp-2" || checkpoints[1].ID != "cp-1" {
		t.Errorf("expected server order preserved, got %#v", checkpoints)
	}
}

// Test that a non-array listing body is reported distinctly
func TestListCheckpointsNotArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "cp-1", "last_modified": "2025-01-02T00:00:00Z"}`))
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	if _, err := drive.ListCheckpoints("work/nb.ipynb"); !errors.Is(err, ErrCheckpointListNotArray) {
		t.Fatalf("expected ErrCheckpointListNotArray, got %v", err)
	}
}

// Test that a null listing body is rejected like any other non-array
func TestListCheckpointsNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	checkpoints, err := drive.ListCheckpoints("work/nb.ipynb")
	if !errors.Is(err, ErrCheckpointListNotArray) {
		t.Fatalf("expected ErrCheckpointListNotArray, got %v", err)
	}
	if checkpoints != nil {
		t.Fatalf("expected no checkpoints on error, got %#v", checkpoints)
	}
}

// Test that a malformed listing item names the offending field
func TestListCheckpointsBadItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id": "cp-1", "last_modified": 42}]`))
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	_, err := drive.ListCheckpoints("work/nb.ipynb")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Field != "last_modified" {
		t.Errorf("expected failure to name 'last_modified', got '%s'", valErr.Field)
	}
}

// Test restoring and deleting a checkpoint, including ID escaping
func TestRestoreAndDeleteCheckpoint(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.URL.EscapedPath() != "/api/contents/nb.ipynb/checkpoints/cp%201" {
			t.Errorf("unexpected escaped path '%s'", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	drive := NewDrive(NewServerSettings(server.URL, ""))

	if err := drive.RestoreCheckpoint("nb.ipynb", "cp 1"); err != nil {
		t.Fatalf("failed to restore checkpoint: %v", err)
	}
	if err := drive.DeleteCheckpoint("nb.ipynb", "cp 1"); err != nil {
		t.Fatalf("failed to delete checkpoint: %v", err)
	}

	if len(methods) != 2 || methods[0] != http.MethodPost || methods[1] != http.MethodDelete {
		t.Errorf("expected POST then DELETE, got %v", methods)
	}
}
