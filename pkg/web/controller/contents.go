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
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/contentsd/pkg/web/model"
)

// ContentsController handles the /api/contents routes. Checkpoint
// sub-resources share the wildcard route, so each verb handler first
// splits the checkpoints suffix off the request path.
type ContentsController struct {
	*basicController
}

func NewContentsController(ctx *gin.Context) *ContentsController {
	return &ContentsController{basicController: newBasicController(ctx)}
}

// requestPath returns the entry path addressed by the request.
func (c *ContentsController) requestPath() string {
	return strings.Trim(c.ctx.Param("path"), "/")
}

// splitCheckpoints splits "<entry>/checkpoints[/<id>]" off a request path.
func splitCheckpoints(requestPath string) (entry, checkpointID string, ok bool) {
	dir, last := path.Split(requestPath)
	dir = strings.TrimSuffix(dir, "/")
	if last == "checkpoints" {
		return dir, "", true
	}
	parent, container := path.Split(dir)
	if container == "checkpoints" {
		return strings.TrimSuffix(parent, "/"), last, true
	}
	return "", "", false
}

// Get serves a model, or a checkpoint listing for the checkpoints
// sub-resource.
func (c *ContentsController) Get() {
	requestPath := c.requestPath()
	if entry, _, ok := splitCheckpoints(requestPath); ok {
		c.listCheckpoints(entry)
		return
	}

	_, rel, err := store.resolve(requestPath)
	if err != nil {
		c.respondStoreError(err)
		return
	}

	withContent := c.ctx.Query("content") != "0"
	format := c.ctx.Query("format")

	m, err := store.model(rel, withContent, format)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondJSON(http.StatusOK, m)
}

// Post creates an untitled entry or a copy, or for the checkpoints
// sub-resource creates or restores a checkpoint.
func (c *ContentsController) Post() {
	requestPath := c.requestPath()
	if entry, checkpointID, ok := splitCheckpoints(requestPath); ok {
		if checkpointID == "" {
			c.createCheckpoint(entry)
		} else {
			c.restoreCheckpoint(entry, checkpointID)
		}
		return
	}

	_, rel, err := store.resolve(requestPath)
	if err != nil {
		c.respondStoreError(err)
		return
	}

	var req model.CreateEntryRequest
	if err := c.bindJSON(&req); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	var m any
	if req.CopyFrom != "" {
		_, fromRel, err := store.resolve(req.CopyFrom)
		if err != nil {
			c.respondStoreError(err)
			return
		}
		m, err = store.copyEntry(fromRel, rel)
		if err != nil {
			c.respondStoreError(err)
			return
		}
	} else {
		var err error
		m, err = store.createUntitled(rel, req.Type, req.Ext)
		if err != nil {
			c.respondStoreError(err)
			return
		}
	}
	c.RespondJSON(http.StatusCreated, m)
}

// Put saves a partial model, creating the entry when absent.
func (c *ContentsController) Put() {
	_, rel, err := store.resolve(c.requestPath())
	if err != nil {
		c.respondStoreError(err)
		return
	}

	var req model.SaveEntryRequest
	if err := c.bindJSON(&req); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	m, created, err := store.save(rel, req.Type, req.Format, req.Content)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.RespondJSON(status, m)
}

// Patch renames an entry.
func (c *ContentsController) Patch() {
	_, oldRel, err := store.resolve(c.requestPath())
	if err != nil {
		c.respondStoreError(err)
		return
	}

	var req model.RenameEntryRequest
	if err := c.bindJSON(&req); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	_, newRel, err := store.resolve(req.Path)
	if err != nil {
		c.respondStoreError(err)
		return
	}

	m, err := store.rename(oldRel, newRel)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondJSON(http.StatusOK, m)
}

// Delete removes an entry, or a checkpoint for the checkpoints
// sub-resource.
func (c *ContentsController) Delete() {
	requestPath := c.requestPath()
	if entry, checkpointID, ok := splitCheckpoints(requestPath); ok {
		c.deleteCheckpoint(entry, checkpointID)
		return
	}

	_, rel, err := store.resolve(requestPath)
	if err != nil {
		c.respondStoreError(err)
		return
	}
	if err := store.remove(rel); err != nil {
		c.respondStoreError(err)
		return
	}
	c.RespondNoContent()
}

func (c *ContentsController) respondStoreError(err error) {
	var serr *storeError
	if errors.As(err, &serr) {
		code := model.ErrorCodeInvalidRequest
		switch serr.status {
		case http.StatusNotFound:
			code = model.ErrorCodeNotFound
		case http.StatusConflict:
			code = model.ErrorCodeConflict
		}
		c.RespondError(serr.status, code, serr.message)
		return
	}
	c.RespondError(http.StatusInternalServerError, model.ErrorCodeRuntimeError, err.Error())
}
