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
	"sync"

	"github.com/alibaba/opensandbox/contentsd/pkg/log"
)

// Listener receives change notifications from a drive.
type Listener func(ChangedArgs)

// FileChangedSignal delivers change events to registered listeners,
// synchronously and in registration order. A panicking listener is logged
// and skipped; it never prevents delivery to later listeners.
type FileChangedSignal struct {
	mu        sync.Mutex
	nextID    int
	listeners []signalEntry
}

type signalEntry struct {
	id int
	fn Listener
}

// Connect registers a listener and returns its disconnect function.
// Disconnecting twice is harmless.
func (s *FileChangedSignal) Connect(fn Listener) (disconnect func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, signalEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// emit broadcasts args to every listener registered at emission time.
func (s *FileChangedSignal) emit(args ChangedArgs) {
	s.mu.Lock()
	entries := make([]signalEntry, len(s.listeners))
	copy(entries, s.listeners)
	s.mu.Unlock()

	for _, entry := range entries {
		invoke(entry.fn, args)
	}
}

// invoke isolates one listener call so a panic cannot break delivery.
func invoke(fn Listener, args ChangedArgs) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("contents: change listener panicked: %v", r)
		}
	}()
	fn(args)
}

// disconnectAll drops every listener. Used on drive disposal.
func (s *FileChangedSignal) disconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = nil
}
