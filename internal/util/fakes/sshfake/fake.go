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

// Package sshfake provides an expectation-based fake of the ssh.Runner
// interface for unit tests.
package sshfake

import (
	"context"
	"testing"

	"github.com/alexandremahdhaoui/vmremedy/internal/util/ssh"
)

// Expectation handles one Run call.
type Expectation = func(ctx context.Context, cmd string) (stdout, stderr string, err error)

// Fake implements ssh.Runner, consuming one expectation per Run call.
type Fake struct {
	t            *testing.T
	expectations []Expectation
	counter      int

	// Commands records every command passed to Run, in order.
	Commands []string
}

// New returns a Fake that will serve the given expectations in order.
func New(t *testing.T, expectations ...Expectation) *Fake {
	t.Helper()

	return &Fake{
		t:            t,
		expectations: expectations,
	}
}

func (f *Fake) Run(ctx context.Context, cmd string) (string, string, error) {
	f.t.Helper()

	if f.counter >= len(f.expectations) {
		f.t.Fatalf("unexpected Run call %d with cmd %q", f.counter+1, cmd)
	}

	counter := f.counter
	f.counter++
	f.Commands = append(f.Commands, cmd)

	return f.expectations[counter](ctx, cmd)
}

// AssertExpectations fails the test unless every expectation was consumed.
func (f *Fake) AssertExpectations() {
	f.t.Helper()

	if f.counter != len(f.expectations) {
		f.t.Fatalf("expected %d Run calls, got %d", len(f.expectations), f.counter)
	}
}

// Factory returns an ssh.RunnerFactory serving this fake for every host.
// It records the hosts it was asked for.
func (f *Fake) Factory(hosts *[]string) ssh.RunnerFactory {
	return func(host, port string) (ssh.Runner, error) {
		if hosts != nil {
			*hosts = append(*hosts, host+":"+port)
		}

		return f, nil
	}
}
