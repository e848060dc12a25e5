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

// Package powerfake provides a scripted fake of the hypervisor.PowerCycler
// interface for unit tests.
package powerfake

import (
	"context"
	"time"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
)

// Call records one PowerReset invocation.
type Call struct {
	Identity types.NodeIdentity
	At       time.Time
}

// Fake implements hypervisor.PowerCycler. Results are consumed per identity
// VMID, one per call; once a VMID's results are exhausted the last one
// repeats.
type Fake struct {
	// Results maps a VMID to the errors returned by successive calls.
	Results map[string][]error

	// Calls records every invocation in order.
	Calls []Call

	counters map[string]int
}

// New returns an empty Fake; calls for unknown VMIDs succeed.
func New() *Fake {
	return &Fake{
		Results:  map[string][]error{},
		counters: map[string]int{},
	}
}

// Script sets the sequence of results for a VMID.
func (f *Fake) Script(vmID string, results ...error) *Fake {
	f.Results[vmID] = results
	return f
}

func (f *Fake) PowerReset(_ context.Context, identity types.NodeIdentity) error {
	f.Calls = append(f.Calls, Call{Identity: identity, At: time.Now()})

	results, ok := f.Results[identity.VMID]
	if !ok || len(results) == 0 {
		return nil
	}

	i := f.counters[identity.VMID]
	f.counters[identity.VMID]++
	if i >= len(results) {
		i = len(results) - 1
	}

	return results[i]
}

// CallsFor returns the recorded calls for one VMID.
func (f *Fake) CallsFor(vmID string) []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Identity.VMID == vmID {
			out = append(out, c)
		}
	}

	return out
}
