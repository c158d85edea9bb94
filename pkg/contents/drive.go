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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultAPIEndpoint is the REST path prefix of the contents service.
const DefaultAPIEndpoint = "api/contents"

// filesEndpoint is the REST path prefix download URLs point at.
const filesEndpoint = "files"

// Drive is a named proxy mapping file-system-like operations onto a remote
// Jupyter server's contents REST API. Every operation is a single HTTP
// round trip: no caching, no retries, no request coalescing. Mutating
// operations emit exactly one change event after their response body has
// been validated, never before and never on failure.
type Drive struct {
	name        string
	apiEndpoint string
	settings    *ServerSettings
	changed     FileChangedSignal

	mu       sync.Mutex
	disposed bool
}

// DriveOption configures a Drive.
type DriveOption func(*Drive)

// WithName overrides the drive name registered with the host.
func WithName(name string) DriveOption {
	return func(d *Drive) {
		d.name = name
	}
}

// WithAPIEndpoint overrides the REST path prefix of the contents service.
func WithAPIEndpoint(endpoint string) DriveOption {
	return func(d *Drive) {
		d.apiEndpoint = strings.Trim(endpoint, "/")
	}
}

// NewDrive creates a drive backed by the given connection settings. The
// settings record stays owned by the caller and may be mutated between
// operations to point the drive at a different server.
func NewDrive(settings *ServerSettings, options ...DriveOption) *Drive {
	if settings == nil {
		settings = NewServerSettings("", "")
	}
	drive := &Drive{
		name:        "Default",
		apiEndpoint: DefaultAPIEndpoint,
		settings:    settings,
	}
	for _, option := range options {
		option(drive)
	}
	return drive
}

// Name identifies this drive among the drives registered with the host.
func (d *Drive) Name() string {
	return d.name
}

// Settings exposes the mutable connection record.
func (d *Drive) Settings() *ServerSettings {
	return d.settings
}

// Changed is the drive's change notification signal. Only the drive itself
// fires it, once per successful mutating operation.
func (d *Drive) Changed() *FileChangedSignal {
	return &d.changed
}

// IsDisposed reports whether Dispose has been called.
func (d *Drive) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// Dispose releases the notification channel. It is idempotent; no further
// operations may be invoked afterwards.
func (d *Drive) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	d.mu.Unlock()

	d.changed.disconnectAll()
}

// Get fetches the model for a file or directory. No change event is
// emitted for reads.
func (d *Drive) Get(path string, opts *FetchOptions) (*Model, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if opts != nil {
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
		// The remote API rejects a format parameter for notebooks.
		if opts.Format != "" && opts.Type != TypeNotebook {
			query.Set("format", opts.Format)
		}
		query.Set("content", boolFlag(opts.Content))
	}

	requestURL := withQuery(d.entryURL(snap, path), query, snap)
	body, err := d.request(snap, http.MethodGet, requestURL, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeModel(body)
}

// GetDownloadURL builds the absolute URL the entry can be downloaded from.
// No network call is made. When the connection's cookie jar holds an
// anti-forgery cookie for the server origin, its token is appended as the
// _xsrf query parameter.
func (d *Drive) GetDownloadURL(path string) (string, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return "", err
	}

	downloadURL := joinURL(snap.baseURL, filesEndpoint, encodeSegments(path))
	if token := snap.xsrfToken(); token != "" {
		downloadURL = withQuery(downloadURL, url.Values{"_xsrf": []string{token}}, settingsSnapshot{})
	}
	return downloadURL, nil
}

// NewUntitled creates a new untitled file or directory in the given
// directory and emits a "new" event carrying the created model.
func (d *Drive) NewUntitled(opts CreateOptions) (*Model, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	opts.Ext = normalizeExtension(opts.Ext)
	payload, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("contents: failed to serialize request: %w", err)
	}

	requestURL := withQuery(d.entryURL(snap, opts.Path), nil, snap)
	body, err := d.request(snap, http.MethodPost, requestURL, payload, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	model, err := decodeModel(body)
	if err != nil {
		return nil, err
	}
	d.changed.emit(ChangedArgs{Type: ChangeNew, NewValue: model})
	return model, nil
}

// Delete removes a file or directory and emits a "delete" event whose old
// value carries the deleted path.
func (d *Drive) Delete(path string) error {
	snap, err := d.settings.snapshot()
	if err != nil {
		return err
	}

	requestURL := withQuery(d.entryURL(snap, path), nil, snap)
	if _, err := d.request(snap, http.MethodDelete, requestURL, nil, http.StatusNoContent); err != nil {
		return err
	}

	d.changed.emit(ChangedArgs{Type: ChangeDelete, OldValue: &Model{Path: path}})
	return nil
}

// Rename moves a file or directory to a new path and emits a "rename"
// event carrying both the old path and the validated new model.
func (d *Drive) Rename(oldPath, newPath string) (*Model, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"path": newPath})
	if err != nil {
		return nil, fmt.Errorf("contents: failed to serialize request: %w", err)
	}

	requestURL := withQuery(d.entryURL(snap, oldPath), nil, snap)
	body, err := d.request(snap, http.MethodPatch, requestURL, payload, http.StatusOK)
	if err != nil {
		return nil, err
	}

	model, err := decodeModel(body)
	if err != nil {
		return nil, err
	}
	d.changed.emit(ChangedArgs{
		Type:     ChangeRename,
		OldValue: &Model{Path: oldPath},
		NewValue: model,
	})
	return model, nil
}

// Save writes a partial model to the given path, creating the entry when
// it does not exist, and emits a "save" event with the resulting model.
func (d *Drive) Save(path string, opts SaveOptions) (*Model, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("contents: failed to serialize request: %w", err)
	}

	requestURL := withQuery(d.entryURL(snap, path), nil, snap)
	body, err := d.request(snap, http.MethodPut, requestURL, payload, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	model, err := decodeModel(body)
	if err != nil {
		return nil, err
	}
	d.changed.emit(ChangedArgs{Type: ChangeSave, NewValue: model})
	return model, nil
}

// Copy duplicates a file into the given directory. The server picks the
// final name; the validated result is emitted as a "new" event.
func (d *Drive) Copy(fromFile, toDir string) (*Model, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"copy_from": fromFile})
	if err != nil {
		return nil, fmt.Errorf("contents: failed to serialize request: %w", err)
	}

	requestURL := withQuery(d.entryURL(snap, toDir), nil, snap)
	body, err := d.request(snap, http.MethodPost, requestURL, payload, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	model, err := decodeModel(body)
	if err != nil {
		return nil, err
	}
	d.changed.emit(ChangedArgs{Type: ChangeNew, NewValue: model})
	return model, nil
}

// entryURL builds the contents URL of a path, encoding each segment.
func (d *Drive) entryURL(snap settingsSnapshot, path string, extra ...string) string {
	parts := append([]string{d.apiEndpoint, encodeSegments(path)}, extra...)
	return joinURL(snap.baseURL, parts...)
}

// request performs one HTTP round trip and enforces the expected status.
// Any other status is surfaced as a ResponseError built from the body;
// nothing is retried and nothing is logged.
func (d *Drive) request(snap settingsSnapshot, method, requestURL string, payload []byte, expect ...int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("contents: failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	snap.authorize(req)

	resp, err := snap.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contents: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("contents: failed to read response: %w", err)
	}

	for _, code := range expect {
		if resp.StatusCode == code {
			return body, nil
		}
	}
	return nil, newResponseError(resp.StatusCode, body)
}

// normalizeExtension prepends the missing leading dot of a non-empty
// extension. Case is preserved: remote servers that fold case will produce
// different names than the ones requested here.
func normalizeExtension(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
