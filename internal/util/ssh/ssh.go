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

package ssh

import "context"

// Runner defines the interface for executing a command on a remote host.
type Runner interface {
	// Run executes cmd on the remote host and returns its stdout and
	// stderr. A non-zero remote exit status is returned as an error; stderr
	// is still populated in that case.
	Run(ctx context.Context, cmd string) (stdout, stderr string, err error)
}

// RunnerFactory builds a Runner for a given host and port. The remediation
// executor opens one session per reset attempt through it.
type RunnerFactory func(host, port string) (Runner, error)
