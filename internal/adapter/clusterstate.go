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

package adapter

import (
	"context"
	"errors"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

var errNodeList = errors.New("listing cluster nodes")

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// ClusterState reads node readiness from the orchestration API.
type ClusterState interface {
	// ListNotReadyNodes returns, in API order, the names of all nodes whose
	// Ready condition is explicitly False. Nodes without a Ready condition
	// are not included: absence is not failure.
	ListNotReadyNodes(ctx context.Context) ([]string, error)
}

// --------------------------------------------------- CONSTRUCTORS ------------------------------------------------- //

// NewClusterState returns a ClusterState backed by a Kubernetes client.
func NewClusterState(c client.Client) ClusterState {
	return &clusterState{client: c}
}

// --------------------------------------------- CONCRETE IMPLEMENTATION -------------------------------------------- //

type clusterState struct {
	client client.Client
}

func (s *clusterState) ListNotReadyNodes(ctx context.Context) ([]string, error) {
	list := new(corev1.NodeList)
	if err := s.client.List(ctx, list); err != nil {
		return nil, errors.Join(err, errNodeList)
	}

	var notReady []string
	for i := range list.Items {
		node := &list.Items[i]
		for _, condition := range node.Status.Conditions {
			if condition.Type != corev1.NodeReady {
				continue
			}

			if condition.Status == corev1.ConditionFalse {
				notReady = append(notReady, node.Name)
			}

			// At most one Ready condition is expected; first match wins.
			break
		}
	}

	return notReady, nil
}
