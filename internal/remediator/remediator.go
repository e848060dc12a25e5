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

// Package remediator runs one remediation pass over a list of not-ready
// nodes: resolve each node's VM identity and issue a power reset, with
// bounded retry, never letting one node's failure stop the batch.
package remediator

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/alexandremahdhaoui/vmremedy/internal/adapter"
	"github.com/alexandremahdhaoui/vmremedy/internal/driver/hypervisor"
	"github.com/alexandremahdhaoui/vmremedy/internal/types"
	"github.com/alexandremahdhaoui/vmremedy/internal/util/retry"
)

const (
	// DefaultRetryAttempts is the total reset attempts per node.
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = 10 * time.Second
)

// Remediator executes one remediation pass.
type Remediator struct {
	identities adapter.IdentityMap
	power      hypervisor.PowerCycler
	log        logr.Logger

	retryAttempts int
	retryDelay    time.Duration
}

// Option configures a Remediator.
type Option func(*Remediator)

// WithRetry overrides the per-node retry budget and delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(r *Remediator) {
		r.retryAttempts = attempts
		r.retryDelay = delay
	}
}

// New returns a Remediator over the given identity map and power backend.
func New(
	identities adapter.IdentityMap,
	power hypervisor.PowerCycler,
	log logr.Logger,
	opts ...Option,
) *Remediator {
	r := &Remediator{
		identities:    identities,
		power:         power,
		log:           log,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run remediates every node in nodeNames sequentially, in order, and returns
// the per-run summary. Nodes without an identity mapping are skipped with a
// warning and counted as not attempted. A node whose reset fails after all
// retries is recorded as failed; the remaining nodes are still processed.
func (r *Remediator) Run(ctx context.Context, nodeNames []string) types.Summary {
	summary := types.Summary{}

	for _, nodeName := range nodeNames {
		summary.Record(r.remediate(ctx, nodeName))
	}

	r.log.Info("remediation pass completed",
		"succeeded", summary.Succeeded,
		"attempted", summary.Attempted,
		"total", summary.Total)

	return summary
}

func (r *Remediator) remediate(ctx context.Context, nodeName string) types.Outcome {
	identity, err := r.identities.Resolve(nodeName)
	if errors.Is(err, adapter.ErrIdentityNotFound) {
		r.log.Info("no VM mapping found for node, skipping", "node", nodeName)
		remediationsTotal.WithLabelValues(resultSkipped).Inc()

		return types.Outcome{
			NodeName: nodeName,
			Detail:   "no identity mapping",
		}
	}

	r.log.Info("attempting to reset VM for node",
		"node", nodeName,
		"managementHost", identity.ManagementHost,
		"vmId", identity.VMID)

	// Every failure is retried identically, transient or not: a "VM not
	// found" error burns the same retry budget as a network timeout. Wrap
	// causes with retry.Fatal here once they should opt out.
	err = retry.Do(ctx, func() error {
		resetAttemptsTotal.Inc()
		return r.power.PowerReset(ctx, identity)
	},
		retry.WithAttempts(r.retryAttempts),
		retry.WithDelay(r.retryDelay),
	)
	if err != nil {
		r.log.Error(err, "failed to reset VM for node",
			"node", nodeName,
			"managementHost", identity.ManagementHost,
			"vmId", identity.VMID)
		remediationsTotal.WithLabelValues(resultFailure).Inc()

		return types.Outcome{
			NodeName:  nodeName,
			Attempted: true,
			Detail:    err.Error(),
		}
	}

	r.log.Info("successfully initiated reset for node",
		"node", nodeName,
		"vmId", identity.VMID)
	remediationsTotal.WithLabelValues(resultSuccess).Inc()

	return types.Outcome{
		NodeName:  nodeName,
		Attempted: true,
		Succeeded: true,
	}
}
