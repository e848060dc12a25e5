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

// Package hypervisor issues power operations against the management hosts
// backing cluster nodes. Two backends are supported: ESXi over SSH and
// libvirt over its remote SSH transport.
package hypervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
	"github.com/alexandremahdhaoui/vmremedy/internal/util/ssh"
)

// ErrUnknownDriver is returned when an identity names a driver no backend
// implements.
var ErrUnknownDriver = errors.New("unknown hypervisor driver")

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// PowerCycler performs one hard power reset of the VM named by an identity.
// Implementations must release every session resource on all exit paths,
// success or failure, before returning.
type PowerCycler interface {
	PowerReset(ctx context.Context, identity types.NodeIdentity) error
}

// --------------------------------------------------- CONSTRUCTORS ------------------------------------------------- //

// Config holds the shared credential and connection settings for all
// management hosts.
type Config struct {
	// SSHUser is the privileged user on the management hosts.
	SSHUser string
	// SSHKeyPath is the private key shared by all management hosts.
	SSHKeyPath string
	// ConnectTimeout bounds connection establishment per attempt.
	ConnectTimeout time.Duration
}

// New returns a PowerCycler dispatching on NodeIdentity.Driver. An empty
// driver selects ESXi.
func New(cfg Config) PowerCycler {
	return &dispatcher{
		esxi:    newESXi(cfg),
		libvirt: newLibvirt(cfg),
	}
}

// --------------------------------------------- CONCRETE IMPLEMENTATION -------------------------------------------- //

type dispatcher struct {
	esxi    PowerCycler
	libvirt PowerCycler
}

func (d *dispatcher) PowerReset(ctx context.Context, identity types.NodeIdentity) error {
	switch identity.Driver {
	case "", types.DriverESXi:
		return d.esxi.PowerReset(ctx, identity)
	case types.DriverLibvirt:
		return d.libvirt.PowerReset(ctx, identity)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, identity.Driver)
	}
}

// newRunnerFactory builds the default SSH runner factory for the ESXi driver.
func newRunnerFactory(cfg Config) ssh.RunnerFactory {
	return func(host, port string) (ssh.Runner, error) {
		client, err := ssh.NewClient(host, cfg.SSHUser, cfg.SSHKeyPath, port)
		if err != nil {
			return nil, err
		}

		if cfg.ConnectTimeout > 0 {
			client.DialTimeout = cfg.ConnectTimeout
		}

		return client, nil
	}
}
