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
	"testing"
)

// Test that listeners run synchronously in registration order
func TestSignalOrdering(t *testing.T) {
	var signal FileChangedSignal

	var order []int
	signal.Connect(func(ChangedArgs) { order = append(order, 1) })
	signal.Connect(func(ChangedArgs) { order = append(order, 2) })
	signal.Connect(func(ChangedArgs) { order = append(order, 3) })

	signal.emit(ChangedArgs{Type: ChangeSave})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected delivery in registration order, got %v", order)
	}
}

// Test that a panicking listener does not block later listeners
func TestSignalPanicIsolation(t *testing.T) {
	var signal FileChangedSignal

	var delivered bool
	signal.Connect(func(ChangedArgs) { panic("listener failure") })
	signal.Connect(func(ChangedArgs) { delivered = true })

	signal.emit(ChangedArgs{Type: ChangeDelete})

	if !delivered {
		t.Fatalf("expected delivery to continue past a panicking listener")
	}
}

// Test listener disconnection
func TestSignalDisconnect(t *testing.T) {
	var signal FileChangedSignal

	var first, second int
	disconnect := signal.Connect(func(ChangedArgs) { first++ })
	signal.Connect(func(ChangedArgs) { second++ })

	signal.emit(ChangedArgs{Type: ChangeSave})

	disconnect()
	disconnect() // second call is harmless
	signal.emit(ChangedArgs{Type: ChangeSave})

	if first != 1 {
		t.Errorf("expected disconnected listener to receive 1 event, got %d", first)
	}
	if second != 2 {
		t.Errorf("expected remaining listener to receive 2 events, got %d", second)
	}
}
