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

// vmremedy is a single-pass remediation agent: it lists the cluster's nodes,
// filters those whose Ready condition is False, and issues a hard power
// reset to the VM backing each one through its hypervisor's management host.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alexandremahdhaoui/vmremedy/internal/adapter"
	"github.com/alexandremahdhaoui/vmremedy/internal/driver/hypervisor"
	"github.com/alexandremahdhaoui/vmremedy/internal/k8s"
	"github.com/alexandremahdhaoui/vmremedy/internal/remediator"
	"github.com/alexandremahdhaoui/vmremedy/internal/util/logging"
)

func main() {
	configPath := os.Getenv(ConfigPathEnvKey)
	config, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(logging.Options{
		Development: config.DevelopmentMode,
		Level:       slog.LevelInfo,
	}).WithName("vmremedy").WithValues("runID", uuid.NewString())

	// Required inputs must exist before any work begins.
	for _, path := range []string{config.IdentityMapPath, config.SSHKeyPath} {
		if _, err := os.Stat(path); err != nil {
			log.Error(err, "required file not found", "path", path)
			os.Exit(1)
		}
	}
	if config.KubeconfigPath != k8s.InClusterConfig {
		if _, err := os.Stat(config.KubeconfigPath); err != nil {
			log.Error(err, "required file not found", "path", config.KubeconfigPath)
			os.Exit(1)
		}
	}

	identities, err := adapter.NewIdentityMapFromFile(config.IdentityMapPath)
	if err != nil {
		log.Error(err, "failed to load node-VM mapping", "path", config.IdentityMapPath)
		os.Exit(1)
	}
	log.Info("loaded node-VM mapping", "nodes", identities.Len())

	restConfig, err := k8s.NewKubeRestConfig(config.KubeconfigPath)
	if err != nil {
		log.Error(err, "failed to load kubeconfig", "path", config.KubeconfigPath)
		os.Exit(1)
	}

	kubeClient, err := k8s.NewKubeClient(restConfig)
	if err != nil {
		log.Error(err, "failed to initialize Kubernetes client")
		os.Exit(1)
	}

	ctx := context.Background()

	notReady, err := adapter.NewClusterState(kubeClient).ListNotReadyNodes(ctx)
	if err != nil {
		log.Error(err, "failed to list nodes from Kubernetes")
		os.Exit(1)
	}

	if len(notReady) == 0 {
		log.Info("no NotReady nodes found, exiting")
		return
	}
	log.Info("found NotReady nodes", "count", len(notReady), "nodes", notReady)

	stopMetrics := startMetricsServer(config, log)
	defer stopMetrics()

	power := hypervisor.New(hypervisor.Config{
		SSHUser:        config.SSHUser,
		SSHKeyPath:     config.SSHKeyPath,
		ConnectTimeout: time.Duration(config.ConnectTimeoutSeconds) * time.Second,
	})

	summary := remediator.New(identities, power, log,
		remediator.WithRetry(
			config.RetryAttempts,
			time.Duration(config.RetryDelaySeconds)*time.Second,
		),
	).Run(ctx, notReady)

	// Per-node failures are visible in the logs and the summary; they never
	// change the exit status.
	log.Info("node remediation process completed", "summary", summary.String())
}
