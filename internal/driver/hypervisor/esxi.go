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

package hypervisor

import (
	"context"
	"fmt"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
	"github.com/alexandremahdhaoui/vmremedy/internal/util/ssh"
)

const defaultManagementPort = "22"

// esxi resets VMs by running vim-cmd on the ESXi host over SSH.
type esxi struct {
	newRunner ssh.RunnerFactory
}

func newESXi(cfg Config) *esxi {
	return &esxi{newRunner: newRunnerFactory(cfg)}
}

// NewESXi returns an ESXi PowerCycler using the given runner factory.
// The factory indirection keeps the driver testable without a live host.
func NewESXi(factory ssh.RunnerFactory) PowerCycler {
	return &esxi{newRunner: factory}
}

func (e *esxi) PowerReset(ctx context.Context, identity types.NodeIdentity) error {
	port := identity.Port
	if port == "" {
		port = defaultManagementPort
	}

	runner, err := e.newRunner(identity.ManagementHost, port)
	if err != nil {
		return fmt.Errorf("building runner for %s: %w", identity.ManagementHost, err)
	}

	cmd := fmt.Sprintf("vim-cmd vmsvc/power.reset %s", identity.VMID)
	if _, _, err := runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf(
			"resetting vm %s on %s: %w",
			identity.VMID,
			identity.ManagementHost,
			err,
		)
	}

	return nil
}
