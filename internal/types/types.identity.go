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

const (
	// DriverESXi selects the SSH-based ESXi power driver.
	DriverESXi = "esxi"
	// DriverLibvirt selects the libvirt power driver.
	DriverLibvirt = "libvirt"
)

// NodeIdentity locates the virtual machine backing a cluster node.
// Identities are loaded in bulk at startup and never mutated afterwards.
type NodeIdentity struct {
	// NodeName is the Kubernetes node name the identity belongs to.
	NodeName string
	// ManagementHost is the address of the hypervisor endpoint that can
	// execute power operations on the VM.
	ManagementHost string
	// VMID identifies the virtual machine on the management host.
	VMID string
	// Driver names the hypervisor backend. Empty means DriverESXi.
	Driver string
	// Port is the management port on the host. Empty means "22".
	Port string
}
