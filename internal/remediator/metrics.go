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

package remediator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultSkipped = "skipped_unmapped"
)

var (
	remediationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vmremedy_remediations_total",
		Help: "Per-node remediation outcomes, partitioned by result.",
	}, []string{"result"})

	resetAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vmremedy_reset_attempts_total",
		Help: "Individual power-reset invocations, including retries.",
	})
)
