// Copyright The Renewable Simulator Authors.
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

package simulator

import (
	"sort"
)

// Entry is a single node's most recent formatted share.
type Entry struct {
	Node  string
	Share string
}

// StateStore holds the last successfully annotated share per node for the
// lifetime of one Controller. It is not safe for concurrent use; only the
// control loop goroutine reads or writes it.
type StateStore struct {
	shares map[string]string
}

// NewStateStore returns an empty store.
func NewStateStore() *StateStore {
	return &StateStore{shares: make(map[string]string)}
}

// Set overwrites the share recorded for node.
func (s *StateStore) Set(node, share string) {
	s.shares[node] = share
}

// Get returns the share recorded for node, if any.
func (s *StateStore) Get(node string) (string, bool) {
	share, ok := s.shares[node]
	return share, ok
}

// Entries returns all recorded shares sorted by node name.
// Nodes that disappeared from the cluster stay in the result.
func (s *StateStore) Entries() []Entry {
	entries := make([]Entry, 0, len(s.shares))
	for node, share := range s.shares {
		entries = append(entries, Entry{Node: node, Share: share})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Node < entries[j].Node
	})
	return entries
}

// Len returns the number of recorded nodes.
func (s *StateStore) Len() int {
	return len(s.shares)
}
