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

package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/alexandremahdhaoui/vmremedy/internal/adapter"
)

func newNode(name string, conditions ...corev1.NodeCondition) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status:     corev1.NodeStatus{Conditions: conditions},
	}
}

func readyCondition(status corev1.ConditionStatus) corev1.NodeCondition {
	return corev1.NodeCondition{Type: corev1.NodeReady, Status: status}
}

func TestListNotReadyNodes(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []*corev1.Node
		expected []string
	}{
		{
			name: "ready, not-ready and condition-less nodes",
			nodes: []*corev1.Node{
				newNode("node-a", readyCondition(corev1.ConditionTrue)),
				newNode("node-b", readyCondition(corev1.ConditionFalse)),
				newNode("node-c"),
			},
			expected: []string{"node-b"},
		},
		{
			name: "unknown readiness is not not-ready",
			nodes: []*corev1.Node{
				newNode("node-a", readyCondition(corev1.ConditionUnknown)),
			},
			expected: nil,
		},
		{
			name: "other condition types are ignored",
			nodes: []*corev1.Node{
				newNode("node-a",
					corev1.NodeCondition{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionFalse},
					corev1.NodeCondition{Type: corev1.NodeDiskPressure, Status: corev1.ConditionTrue},
					readyCondition(corev1.ConditionTrue),
				),
				corev1NodeWithPressureOnly("node-b"),
			},
			expected: nil,
		},
		{
			name: "multiple not-ready nodes keep list order",
			nodes: []*corev1.Node{
				newNode("node-a", readyCondition(corev1.ConditionFalse)),
				newNode("node-b", readyCondition(corev1.ConditionTrue)),
				newNode("node-c", readyCondition(corev1.ConditionFalse)),
			},
			expected: []string{"node-a", "node-c"},
		},
		{
			name:     "empty cluster",
			nodes:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme := runtime.NewScheme()
			require.NoError(t, corev1.AddToScheme(scheme))

			builder := fake.NewClientBuilder().WithScheme(scheme)
			for _, node := range tt.nodes {
				builder = builder.WithObjects(node)
			}

			state := adapter.NewClusterState(builder.Build())

			notReady, err := state.ListNotReadyNodes(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, notReady)
		})
	}
}

// corev1NodeWithPressureOnly builds a node whose only False condition is not
// the Ready condition; such a node must never count as not-ready.
func corev1NodeWithPressureOnly(name string) *corev1.Node {
	return newNode(name,
		corev1.NodeCondition{Type: corev1.NodePIDPressure, Status: corev1.ConditionFalse},
	)
}
