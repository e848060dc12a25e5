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
	"net/url"

	"libvirt.org/go/libvirt"
	"libvirt.org/go/libvirtxml"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
)

// libvirtDriver resets VMs through the libvirt remote API, tunnelled over
// SSH with the same shared private key as the ESXi driver.
type libvirtDriver struct {
	user    string
	keyPath string
}

func newLibvirt(cfg Config) *libvirtDriver {
	return &libvirtDriver{
		user:    cfg.SSHUser,
		keyPath: cfg.SSHKeyPath,
	}
}

// connectURI builds a qemu+ssh URI for the management host.
func (d *libvirtDriver) connectURI(identity types.NodeIdentity) string {
	query := url.Values{}
	query.Set("no_verify", "1")
	if d.keyPath != "" {
		query.Set("keyfile", d.keyPath)
	}

	uri := url.URL{
		Scheme:   "qemu+ssh",
		User:     url.User(d.user),
		Host:     identity.ManagementHost,
		Path:     "/system",
		RawQuery: query.Encode(),
	}

	return uri.String()
}

func (d *libvirtDriver) PowerReset(ctx context.Context, identity types.NodeIdentity) error {
	// The libvirt bindings block without taking a context; honor an already
	// cancelled context before opening a connection.
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := libvirt.NewConnect(d.connectURI(identity))
	if err != nil {
		return fmt.Errorf("connecting to libvirt on %s: %w", identity.ManagementHost, err)
	}
	defer func() { _, _ = conn.Close() }()

	domain, err := lookupDomain(conn, identity.VMID)
	if err != nil {
		return fmt.Errorf("looking up domain %s on %s: %w", identity.VMID, identity.ManagementHost, err)
	}
	defer func() { _ = domain.Free() }()

	// Confirm the definition actually describes the VM we were asked to
	// reset before issuing an irreversible power operation.
	xmlDesc, err := domain.GetXMLDesc(0)
	if err != nil {
		return fmt.Errorf("reading domain definition for %s: %w", identity.VMID, err)
	}

	def := &libvirtxml.Domain{}
	if err := def.Unmarshal(xmlDesc); err != nil {
		return fmt.Errorf("parsing domain definition for %s: %w", identity.VMID, err)
	}
	if def.Name != identity.VMID && def.UUID != identity.VMID {
		return fmt.Errorf(
			"domain definition mismatch: looked up %q, definition names %q (uuid %s)",
			identity.VMID,
			def.Name,
			def.UUID,
		)
	}

	if err := domain.Reset(0); err != nil {
		return fmt.Errorf("resetting domain %s on %s: %w", identity.VMID, identity.ManagementHost, err)
	}

	return nil
}

// lookupDomain resolves a VM identifier as a domain name first, then as a
// UUID string.
func lookupDomain(conn *libvirt.Connect, vmID string) (*libvirt.Domain, error) {
	domain, err := conn.LookupDomainByName(vmID)
	if err == nil {
		return domain, nil
	}

	domain, uuidErr := conn.LookupDomainByUUIDString(vmID)
	if uuidErr == nil {
		return domain, nil
	}

	return nil, err
}
