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

// Package simulator implements the renewable-share control loop.
//
// Every cycle the Controller lists the managed nodes, generates a simulated
// renewable-energy share for each of them, records it in the node's
// "renewable" annotation and in a loop-owned StateStore, and then derives a
// placement decision per stored node. Nodes whose share is at or below the
// threshold receive a green=false:NoExecute taint; all other nodes have their
// taints cleared. Both writes are full-replacement merge patches, so a cycle
// converges the cluster regardless of what other actors wrote in between.
//
// The loop is single-goroutine. Between cycles it waits on an injectable
// clock, which can be woken early or cancelled through its context.
package simulator
