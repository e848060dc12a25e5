//go:build unit

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandremahdhaoui/vmremedy/internal/types"
)

func TestDispatcher_UnknownDriver(t *testing.T) {
	power := New(Config{
		SSHUser:        "root",
		SSHKeyPath:     "/secrets/id_rsa",
		ConnectTimeout: 30 * time.Second,
	})

	err := power.PowerReset(context.Background(), types.NodeIdentity{
		NodeName:       "node-x",
		ManagementHost: "10.0.0.5",
		VMID:           "42",
		Driver:         "vsphere-api",
	})

	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestLibvirt_ConnectURI(t *testing.T) {
	driver := newLibvirt(Config{
		SSHUser:    "root",
		SSHKeyPath: "/secrets/id_rsa",
	})

	uri := driver.connectURI(types.NodeIdentity{
		ManagementHost: "10.0.0.7",
		VMID:           "worker-3",
	})

	assert.Equal(t, "qemu+ssh://root@10.0.0.7/system?keyfile=%2Fsecrets%2Fid_rsa&no_verify=1", uri)
}

func TestLibvirt_ConnectURI_NoKeyfile(t *testing.T) {
	driver := newLibvirt(Config{SSHUser: "root"})

	uri := driver.connectURI(types.NodeIdentity{ManagementHost: "10.0.0.7"})

	assert.Equal(t, "qemu+ssh://root@10.0.0.7/system?no_verify=1", uri)
}
