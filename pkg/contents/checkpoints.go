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
	"net/http"
	"net/url"
)

// checkpointsSuffix is the sub-resource holding a file's restore points.
const checkpointsSuffix = "checkpoints"

// CreateCheckpoint asks the server to retain a restore point for the file.
// Checkpoint operations never emit change events.
func (d *Drive) CreateCheckpoint(path string) (*Checkpoint, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	requestURL := withQuery(d.entryURL(snap, path, checkpointsSuffix), nil, snap)
	body, err := d.request(snap, http.MethodPost, requestURL, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return decodeCheckpoint(body)
}

// ListCheckpoints returns the file's checkpoints in server order.
func (d *Drive) ListCheckpoints(path string) ([]Checkpoint, error) {
	snap, err := d.settings.snapshot()
	if err != nil {
		return nil, err
	}

	requestURL := withQuery(d.entryURL(snap, path, checkpointsSuffix), nil, snap)
	body, err := d.request(snap, http.MethodGet, requestURL, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decodeCheckpointList(body)
}

// RestoreCheckpoint reverts the file to the state stored under the
// checkpoint ID.
func (d *Drive) RestoreCheckpoint(path, checkpointID string) error {
	snap, err := d.settings.snapshot()
	if err != nil {
		return err
	}

	requestURL := withQuery(d.checkpointURL(snap, path, checkpointID), nil, snap)
	_, err = d.request(snap, http.MethodPost, requestURL, nil, http.StatusNoContent)
	return err
}

// DeleteCheckpoint discards the checkpoint stored under the ID.
func (d *Drive) DeleteCheckpoint(path, checkpointID string) error {
	snap, err := d.settings.snapshot()
	if err != nil {
		return err
	}

	requestURL := withQuery(d.checkpointURL(snap, path, checkpointID), nil, snap)
	_, err = d.request(snap, http.MethodDelete, requestURL, nil, http.StatusNoContent)
	return err
}

func (d *Drive) checkpointURL(snap settingsSnapshot, path, checkpointID string) string {
	return d.entryURL(snap, path, checkpointsSuffix, url.PathEscape(checkpointID))
}
