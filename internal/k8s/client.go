/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package k8s provides utilities for creating Kubernetes clients.
package k8s

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// InClusterConfig is the string value that indicates in-cluster config
// should be used instead of a kubeconfig file.
const InClusterConfig = "in-cluster"

// NewKubeRestConfig creates a Kubernetes REST config from the given
// kubeconfig path. If kubeconfigPath is "in-cluster", it uses the in-cluster
// config; otherwise it loads the kubeconfig from the specified file path.
func NewKubeRestConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath == InClusterConfig {
		return rest.InClusterConfig()
	}

	return clientcmd.BuildConfigFromFlags("", kubeconfigPath)
}

// NewKubeClient creates a Kubernetes client whose scheme carries only
// core/v1: the remediator reads nodes and nothing else.
func NewKubeClient(restConfig *rest.Config) (client.Client, error) { //nolint:ireturn
	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		return nil, err
	}

	return client.New(restConfig, client.Options{Scheme: scheme}) //nolint:exhaustruct
}
