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

package adapter

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
)

var (
	// ErrIdentityNotFound is returned when a node has no entry in the map.
	ErrIdentityNotFound = errors.New("node identity not found")

	errIdentityMapRead  = errors.New("reading identity map file")
	errIdentityMapParse = errors.New("parsing identity map file")
)

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// IdentityMap resolves a cluster node name to the VM backing it.
// It is a read-only lookup table for the lifetime of a run.
type IdentityMap interface {
	// Resolve returns the identity of the named node, or ErrIdentityNotFound.
	Resolve(nodeName string) (types.NodeIdentity, error)
	// Len returns the number of mapped nodes.
	Len() int
}

// --------------------------------------------------- CONSTRUCTORS ------------------------------------------------- //

// identityEntry is the on-disk shape of one mapping. The file maps node name
// to entry and may be YAML or JSON.
type identityEntry struct {
	ManagementHost string `json:"managementHost"`
	VMID           string `json:"vmId"`
	Driver         string `json:"driver,omitempty"`
	Port           string `json:"port,omitempty"`
}

// NewIdentityMapFromFile loads the node-to-VM map from path.
// Entries missing a management host or VM id make the load fail: remediation
// without a trustworthy map is meaningless, so the whole run must abort.
func NewIdentityMapFromFile(path string) (IdentityMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(err, errIdentityMapRead)
	}

	raw := map[string]identityEntry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(err, errIdentityMapParse)
	}

	entries := make(map[string]types.NodeIdentity, len(raw))
	for name, e := range raw {
		if e.ManagementHost == "" || e.VMID == "" {
			return nil, errors.Join(
				fmt.Errorf("entry %q must set managementHost and vmId", name),
				errIdentityMapParse,
			)
		}

		entries[name] = types.NodeIdentity{
			NodeName:       name,
			ManagementHost: e.ManagementHost,
			VMID:           e.VMID,
			Driver:         e.Driver,
			Port:           e.Port,
		}
	}

	return &identityMap{entries: entries}, nil
}

// --------------------------------------------- CONCRETE IMPLEMENTATION -------------------------------------------- //

type identityMap struct {
	entries map[string]types.NodeIdentity
}

func (m *identityMap) Resolve(nodeName string) (types.NodeIdentity, error) {
	identity, ok := m.entries[nodeName]
	if !ok {
		return types.NodeIdentity{}, fmt.Errorf("%w: %q", ErrIdentityNotFound, nodeName)
	}

	return identity, nil
}

func (m *identityMap) Len() int {
	return len(m.entries)
}
