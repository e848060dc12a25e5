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

package remediator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandremahdhaoui/vmremedy/internal/adapter"
	"github.com/alexandremahdhaoui/vmremedy/internal/remediator"
	"github.com/alexandremahdhaoui/vmremedy/internal/util/fakes/powerfake"
)

func newIdentityMap(t *testing.T, content string) adapter.IdentityMap {
	t.Helper()

	path := filepath.Join(t.TempDir(), "node_vm_map.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	identities, err := adapter.NewIdentityMapFromFile(path)
	require.NoError(t, err)

	return identities
}

func TestRun_SuccessOnFirstAttempt(t *testing.T) {
	identities := newIdentityMap(t, `{"node-b": {"managementHost": "10.0.0.5", "vmId": "42"}}`)
	power := powerfake.New()

	summary := remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(3, time.Millisecond),
	).Run(context.Background(), []string{"node-b"})

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, "1/1", summary.String())

	require.Len(t, power.Calls, 1)
	assert.Equal(t, "10.0.0.5", power.Calls[0].Identity.ManagementHost)
	assert.Equal(t, "42", power.Calls[0].Identity.VMID)
}

func TestRun_UnmappedNodeIsSkippedNotAttempted(t *testing.T) {
	identities := newIdentityMap(t, `{"node-b": {"managementHost": "10.0.0.5", "vmId": "42"}}`)
	power := powerfake.New()

	summary := remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(3, time.Millisecond),
	).Run(context.Background(), []string{"node-b", "node-d"})

	// node-d still counts in the denominator but never reaches the
	// hypervisor.
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, "1/2", summary.String())

	require.Len(t, summary.Outcomes, 2)
	assert.False(t, summary.Outcomes[1].Attempted)
	assert.False(t, summary.Outcomes[1].Succeeded)
	assert.Equal(t, "node-d", summary.Outcomes[1].NodeName)

	assert.Empty(t, power.CallsFor("node-d"))
	require.Len(t, power.Calls, 1)
}

func TestRun_RetriesWithFixedDelayThenFails(t *testing.T) {
	const delay = 20 * time.Millisecond

	identities := newIdentityMap(t, `{"node-b": {"managementHost": "10.0.0.5", "vmId": "42"}}`)
	cause := errors.New("remote command exited with status 1")
	power := powerfake.New().Script("42", cause, cause, cause)

	summary := remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(3, delay),
	).Run(context.Background(), []string{"node-b"})

	assert.Equal(t, "0/1", summary.String())
	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Attempted)
	assert.False(t, summary.Outcomes[0].Succeeded)
	assert.Contains(t, summary.Outcomes[0].Detail, cause.Error())

	calls := power.CallsFor("42")
	require.Len(t, calls, 3, "at most 3 invocations per node-level attempt")
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].At.Sub(calls[i-1].At), delay,
			"no invocation may occur before the fixed delay has elapsed")
	}
}

func TestRun_TransientFailureRecoversWithinBudget(t *testing.T) {
	identities := newIdentityMap(t, `{"node-b": {"managementHost": "10.0.0.5", "vmId": "42"}}`)
	power := powerfake.New().Script("42", errors.New("connection refused"), nil)

	summary := remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(3, time.Millisecond),
	).Run(context.Background(), []string{"node-b"})

	assert.Equal(t, "1/1", summary.String())
	assert.Len(t, power.CallsFor("42"), 2)
}

func TestRun_OneNodesFailureDoesNotAbortTheBatch(t *testing.T) {
	identities := newIdentityMap(t, `{
		"node-a": {"managementHost": "10.0.0.5", "vmId": "41"},
		"node-b": {"managementHost": "10.0.0.6", "vmId": "42"}
	}`)
	cause := errors.New("dial tcp: i/o timeout")
	power := powerfake.New().Script("41", cause, cause, cause)

	summary := remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(3, time.Millisecond),
	).Run(context.Background(), []string{"node-a", "node-b"})

	assert.Equal(t, "1/2", summary.String())
	assert.Len(t, power.CallsFor("41"), 3)
	assert.Len(t, power.CallsFor("42"), 1, "node-b is still processed")
}

func TestRun_ProcessesNodesInListOrder(t *testing.T) {
	identities := newIdentityMap(t, `{
		"node-a": {"managementHost": "10.0.0.5", "vmId": "41"},
		"node-b": {"managementHost": "10.0.0.6", "vmId": "42"},
		"node-c": {"managementHost": "10.0.0.7", "vmId": "43"}
	}`)
	power := powerfake.New()

	remediator.New(identities, power, logr.Discard(),
		remediator.WithRetry(1, 0),
	).Run(context.Background(), []string{"node-c", "node-a", "node-b"})

	require.Len(t, power.Calls, 3)
	assert.Equal(t, "43", power.Calls[0].Identity.VMID)
	assert.Equal(t, "41", power.Calls[1].Identity.VMID)
	assert.Equal(t, "42", power.Calls[2].Identity.VMID)
}

func TestRun_EmptyList(t *testing.T) {
	identities := newIdentityMap(t, `{}`)
	power := powerfake.New()

	summary := remediator.New(identities, power, logr.Discard()).
		Run(context.Background(), nil)

	assert.Equal(t, "0/0", summary.String())
	assert.Empty(t, power.Calls)
}
