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

package controller

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alibaba/opensandbox/contentsd/pkg/contents"
	"github.com/alibaba/opensandbox/contentsd/pkg/events"
)

func (c *ContentsController) createCheckpoint(entry string) {
	_, rel, err := store.resolve(entry)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	cp, err := store.createCheckpoint(rel)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondJSON(http.StatusCreated, cp)
}

func (c *ContentsController) listCheckpoints(entry string) {
	_, rel, err := store.resolve(entry)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	checkpoints, err := store.listCheckpoints(rel)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondJSON(http.StatusOK, checkpoints)
}

func (c *ContentsController) restoreCheckpoint(entry, checkpointID string) {
	_, rel, err := store.resolve(entry)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	if err := store.restoreCheckpoint(rel, checkpointID); err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondNoContent()
}

func (c *ContentsController) deleteCheckpoint(entry, checkpointID string) {
	_, rel, err := store.resolve(entry)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	if err := store.deleteCheckpoint(rel, checkpointID); err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondNoContent()
}

// checkpointDir is the sidecar directory holding the checkpoints of one
// file, one checkpoint per file named by its ID.
func (s *contentsStore) checkpointDir(rel string) string {
	return filepath.Join(s.cfg.Root, checkpointDirName, filepath.FromSlash(rel))
}

func (s *contentsStore) createCheckpoint(rel string) (*contents.Checkpoint, error) {
	abs := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errNotFound(rel)
	}
	if info.IsDir() {
		return nil, errBadRequest("directories cannot be checkpointed")
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	dir := s.checkpointDir(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	target := filepath.Join(dir, id)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, err
	}

	info, err = os.Stat(target)
	if err != nil {
		return nil, err
	}
	return &contents.Checkpoint{
		ID:           id,
		LastModified: info.ModTime().UTC().Format(time.RFC3339),
	}, nil
}

// listCheckpoints returns the file's checkpoints, most recent first. A
// file without checkpoints yields an empty list, not an error.
func (s *contentsStore) listCheckpoints(rel string) ([]contents.Checkpoint, error) {
	if _, err := os.Stat(filepath.Join(s.cfg.Root, filepath.FromSlash(rel))); err != nil {
		return nil, errNotFound(rel)
	}

	entries, err := os.ReadDir(s.checkpointDir(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return []contents.Checkpoint{}, nil
		}
		return nil, err
	}

	checkpoints := make([]contents.Checkpoint, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		checkpoints = append(checkpoints, contents.Checkpoint{
			ID:           entry.Name(),
			LastModified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].LastModified > checkpoints[j].LastModified
	})
	return checkpoints, nil
}

func (s *contentsStore) restoreCheckpoint(rel, checkpointID string) error {
	source := filepath.Join(s.checkpointDir(rel), checkpointID)
	data, err := os.ReadFile(source)
	if err != nil {
		return errNotFound(rel + "/checkpoints/" + checkpointID)
	}

	abs := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return err
	}

	s.publish(events.Event{Type: events.EventSave, Path: rel})
	return nil
}

func (s *contentsStore) deleteCheckpoint(rel, checkpointID string) error {
	target := filepath.Join(s.checkpointDir(rel), checkpointID)
	if _, err := os.Stat(target); err != nil {
		return errNotFound(rel + "/checkpoints/" + checkpointID)
	}
	return os.Remove(target)
}
