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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alibaba/opensandbox/contentsd/pkg/contents"
	"github.com/alibaba/opensandbox/contentsd/pkg/events"
	"github.com/alibaba/opensandbox/contentsd/pkg/log"
)

// checkpointDirName is the sidecar directory holding checkpoint copies. It
// never shows up in directory listings.
const checkpointDirName = ".contentsd_checkpoints"

// emptyNotebook is what a freshly created notebook contains.
const emptyNotebook = `{"cells": [], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`

// StoreConfig configures the contents store backing the REST handlers.
type StoreConfig struct {
	// Root is the directory served as the contents tree
	Root string

	// AllowHidden exposes dot-prefixed entries in listings and lookups
	AllowHidden bool

	// HideGlobs filters listed entries by base name, doublestar syntax
	HideGlobs []string

	// Broadcaster receives one event per successful mutation, may be nil
	Broadcaster *events.Broadcaster
}

// contentsStore maps REST paths onto files under the configured root.
type contentsStore struct {
	cfg StoreConfig
}

var store *contentsStore

// InitContentsStore wires the shared store used by every request. Must be
// called before the router starts serving.
func InitContentsStore(cfg StoreConfig) {
	cfg.Root = filepath.Clean(cfg.Root)
	store = &contentsStore{cfg: cfg}
	log.Info("contents store serving root %s", cfg.Root)
}

type storeError struct {
	status  int
	message string
}

func (e *storeError) Error() string {
	return e.message
}

func errNotFound(rel string) *storeError {
	return &storeError{status: http.StatusNotFound, message: fmt.Sprintf("No such file or directory: %s", rel)}
}

func errBadRequest(message string) *storeError {
	return &storeError{status: http.StatusBadRequest, message: message}
}

func errConflict(message string) *storeError {
	return &storeError{status: http.StatusConflict, message: message}
}

// resolve maps an API path onto an absolute path under the root. Paths
// escaping the root or pointing at hidden entries fail with not found.
func (s *contentsStore) resolve(apiPath string) (absPath, rel string, err error) {
	rel = strings.Trim(path.Clean("/"+apiPath), "/")
	if rel == "." {
		rel = ""
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == ".." {
			return "", "", errBadRequest("path escapes the served root")
		}
	}
	if s.isHidden(rel) {
		return "", "", errNotFound(rel)
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(rel)), rel, nil
}

// isHidden reports whether a relative path is filtered from the tree.
// The checkpoint sidecar is always hidden.
func (s *contentsStore) isHidden(rel string) bool {
	if rel == "" {
		return false
	}
	segments := strings.Split(rel, "/")
	for _, segment := range segments {
		if segment == checkpointDirName {
			return true
		}
		if !s.cfg.AllowHidden && strings.HasPrefix(segment, ".") {
			return true
		}
	}
	base := segments[len(segments)-1]
	for _, pattern := range s.cfg.HideGlobs {
		matched, err := doublestar.Match(pattern, base)
		if err != nil {
			log.Warn("invalid hide glob %q: %v", pattern, err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (s *contentsStore) publish(event events.Event) {
	if s.cfg.Broadcaster != nil {
		s.cfg.Broadcaster.Publish(event)
	}
}

func entryType(name string, isDir bool) string {
	if isDir {
		return contents.TypeDirectory
	}
	if strings.EqualFold(path.Ext(name), ".ipynb") {
		return contents.TypeNotebook
	}
	return contents.TypeFile
}

// model builds the API representation of an entry. Content is attached
// only when withContent is set; directory children never carry content.
func (s *contentsStore) model(rel string, withContent bool, format string) (*contents.Model, error) {
	absPath := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotFound(rel)
		}
		return nil, err
	}

	m := &contents.Model{
		Name:         path.Base("/" + rel),
		Path:         rel,
		Type:         entryType(rel, info.IsDir()),
		Created:      info.ModTime().UTC().Format(time.RFC3339),
		LastModified: info.ModTime().UTC().Format(time.RFC3339),
	}
	if rel == "" {
		m.Name = ""
	}

	if m.Type != contents.TypeDirectory && m.Type != contents.TypeNotebook {
		if mimetype := mime.TypeByExtension(path.Ext(m.Name)); mimetype != "" {
			mimetype = strings.Split(mimetype, ";")[0]
			m.Mimetype = &mimetype
		}
	}

	if !withContent {
		return m, nil
	}

	switch m.Type {
	case contents.TypeDirectory:
		children, err := s.listChildren(rel)
		if err != nil {
			return nil, err
		}
		m.Content = children
		m.Format = strptr(contents.FormatJSON)
	case contents.TypeNotebook:
		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		var nb any
		if err := json.Unmarshal(data, &nb); err != nil {
			return nil, fmt.Errorf("notebook %s is not valid JSON: %w", rel, err)
		}
		m.Content = nb
		m.Format = strptr(contents.FormatJSON)
	default:
		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		if format == contents.FormatBase64 {
			m.Content = base64.StdEncoding.EncodeToString(data)
			m.Format = strptr(contents.FormatBase64)
		} else {
			m.Content = string(data)
			m.Format = strptr(contents.FormatText)
		}
	}
	return m, nil
}

// listChildren returns the visible child models of a directory, sorted by
// name, content omitted.
func (s *contentsStore) listChildren(rel string) ([]contents.Model, error) {
	absPath := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, err
	}

	children := make([]contents.Model, 0, len(entries))
	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		if s.isHidden(childRel) {
			continue
		}
		child, err := s.model(childRel, false, "")
		if err != nil {
			log.Warn("skipping unreadable entry %s: %v", childRel, err)
			continue
		}
		children = append(children, *child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

// createUntitled creates a new entry in the directory with a name that is
// not taken yet.
func (s *contentsStore) createUntitled(dirRel, entryKind, ext string) (*contents.Model, error) {
	dirAbs := filepath.Join(s.cfg.Root, filepath.FromSlash(dirRel))
	info, err := os.Stat(dirAbs)
	if err != nil || !info.IsDir() {
		return nil, errNotFound(dirRel)
	}

	if entryKind == "" {
		entryKind = contents.TypeFile
		if strings.EqualFold(ext, ".ipynb") {
			entryKind = contents.TypeNotebook
		}
	}

	name, err := s.pickUntitledName(dirAbs, entryKind, ext)
	if err != nil {
		return nil, err
	}
	rel := path.Join(dirRel, name)
	abs := filepath.Join(dirAbs, name)

	switch entryKind {
	case contents.TypeDirectory:
		err = os.Mkdir(abs, 0o755)
	case contents.TypeNotebook:
		err = os.WriteFile(abs, []byte(emptyNotebook), 0o644)
	default:
		err = os.WriteFile(abs, nil, 0o644)
	}
	if err != nil {
		return nil, err
	}

	s.publish(events.Event{Type: events.EventNew, Path: rel})
	return s.model(rel, false, "")
}

func (s *contentsStore) pickUntitledName(dirAbs, entryKind, ext string) (string, error) {
	var stem, suffix string
	switch entryKind {
	case contents.TypeDirectory:
		stem, suffix = "Untitled Folder", ""
	case contents.TypeNotebook:
		stem, suffix = "Untitled", ".ipynb"
	default:
		stem, suffix = "untitled", ext
	}

	for i := 0; i < 10000; i++ {
		name := stem + suffix
		if i > 0 {
			name = fmt.Sprintf("%s%d%s", stem, i, suffix)
		}
		if _, err := os.Stat(filepath.Join(dirAbs, name)); os.IsNotExist(err) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free untitled name in %s", dirAbs)
}

// copyEntry duplicates a file into a directory, picking a non-conflicting
// name derived from the source name.
func (s *contentsStore) copyEntry(fromRel, dirRel string) (*contents.Model, error) {
	fromAbs := filepath.Join(s.cfg.Root, filepath.FromSlash(fromRel))
	info, err := os.Stat(fromAbs)
	if err != nil {
		return nil, errNotFound(fromRel)
	}
	if info.IsDir() {
		return nil, errBadRequest("directories cannot be copied")
	}

	dirAbs := filepath.Join(s.cfg.Root, filepath.FromSlash(dirRel))
	if info, err := os.Stat(dirAbs); err != nil || !info.IsDir() {
		return nil, errNotFound(dirRel)
	}

	base := path.Base(fromRel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dirAbs, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s-Copy%d%s", stem, i, ext)
	}

	data, err := os.ReadFile(fromAbs)
	if err != nil {
		return nil, err
	}
	rel := path.Join(dirRel, name)
	if err := os.WriteFile(filepath.Join(dirAbs, name), data, 0o644); err != nil {
		return nil, err
	}

	s.publish(events.Event{Type: events.EventNew, Path: rel})
	return s.model(rel, false, "")
}

// save writes a partial model to the path. Reports whether the entry was
// created rather than updated.
func (s *contentsStore) save(rel, entryKind, format string, content any) (*contents.Model, bool, error) {
	abs := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	_, statErr := os.Stat(abs)
	created := os.IsNotExist(statErr)

	if entryKind == "" {
		entryKind = entryType(rel, false)
	}

	if entryKind == contents.TypeDirectory {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, false, err
		}
	} else {
		data, err := encodeContent(entryKind, format, content)
		if err != nil {
			return nil, false, err
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			if os.IsNotExist(err) {
				return nil, false, errNotFound(path.Dir(rel))
			}
			return nil, false, err
		}
	}

	s.publish(events.Event{Type: events.EventSave, Path: rel})
	model, err := s.model(rel, false, "")
	return model, created, err
}

func encodeContent(entryKind, format string, content any) ([]byte, error) {
	if content == nil {
		return nil, nil
	}
	if text, ok := content.(string); ok {
		if format == contents.FormatBase64 {
			data, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, errBadRequest("content is not valid base64")
			}
			return data, nil
		}
		return []byte(text), nil
	}
	// Structured content, e.g. a notebook document
	data, err := json.MarshalIndent(content, "", " ")
	if err != nil {
		return nil, errBadRequest("content is not serializable")
	}
	if entryKind != contents.TypeNotebook && format != contents.FormatJSON {
		return nil, errBadRequest("structured content requires a notebook or json format")
	}
	return data, nil
}

// rename moves an entry. The destination must not exist.
func (s *contentsStore) rename(oldRel, newRel string) (*contents.Model, error) {
	oldAbs := filepath.Join(s.cfg.Root, filepath.FromSlash(oldRel))
	newAbs := filepath.Join(s.cfg.Root, filepath.FromSlash(newRel))

	if _, err := os.Stat(oldAbs); err != nil {
		return nil, errNotFound(oldRel)
	}
	if _, err := os.Stat(newAbs); err == nil {
		return nil, errConflict(fmt.Sprintf("path already exists: %s", newRel))
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return nil, err
	}

	s.publish(events.Event{Type: events.EventRename, Path: newRel, OldPath: oldRel})
	return s.model(newRel, false, "")
}

// remove deletes an entry and its checkpoints.
func (s *contentsStore) remove(rel string) error {
	if rel == "" {
		return errBadRequest("the root directory cannot be deleted")
	}
	abs := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err != nil {
		return errNotFound(rel)
	}
	if err := os.RemoveAll(abs); err != nil {
		return err
	}
	_ = os.RemoveAll(s.checkpointDir(rel))

	s.publish(events.Event{Type: events.EventDelete, Path: rel})
	return nil
}

func strptr(s string) *string {
	return &s
}
