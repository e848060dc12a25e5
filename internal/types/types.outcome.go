// Copyright 2024 Alexandre Mahdhaoui
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

package types

import "fmt"

// Outcome is the result of one remediation attempt for one node.
type Outcome struct {
	// NodeName is the node the outcome refers to.
	NodeName string
	// Attempted reports whether a reset was actually issued. It is false
	// when the node had no identity mapping and was skipped.
	Attempted bool
	// Succeeded reports whether the reset command completed successfully.
	Succeeded bool
	// Detail carries the failure cause or skip reason, empty on success.
	Detail string
}

// Summary aggregates the outcomes of a single remediation run.
type Summary struct {
	// Total is the number of not-ready nodes considered, including nodes
	// skipped for lack of an identity mapping.
	Total int
	// Attempted is the number of nodes for which a reset was issued.
	Attempted int
	// Succeeded is the number of nodes whose reset completed successfully.
	Succeeded int
	// Outcomes holds the per-node results in processing order.
	Outcomes []Outcome
}

// Record appends an outcome and updates the tallies.
func (s *Summary) Record(o Outcome) {
	s.Total++
	if o.Attempted {
		s.Attempted++
	}
	if o.Succeeded {
		s.Succeeded++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// String renders the terminal "succeeded/total" form of the summary.
func (s *Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Succeeded, s.Total)
}
