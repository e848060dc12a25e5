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

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"sigs.k8s.io/yaml"
)

const (
	// ConfigPathEnvKey is the environment variable key for the config file path.
	ConfigPathEnvKey = "VMREMEDY_CONFIG_PATH"
)

// Config holds the configuration for the vmremedy binary.
//
// Some parts of the configuration may be passed through environment
// variables.
type Config struct {
	// KubeconfigPath is the path to the kubeconfig file.
	//
	// It can be set to "in-cluster" to use the in-cluster config.
	KubeconfigPath string `json:"kubeconfigPath"`

	// IdentityMapPath is the path to the node-to-VM mapping file.
	IdentityMapPath string `json:"identityMapPath"`

	// SSHKeyPath is the private key used against every management host.
	SSHKeyPath string `json:"sshKeyPath"`

	// SSHUser is the privileged user on the management hosts.
	SSHUser string `json:"sshUser"`

	// ConnectTimeoutSeconds bounds connection establishment per attempt.
	ConnectTimeoutSeconds int `json:"connectTimeoutSeconds"`

	// RetryAttempts is the total reset attempts per node.
	RetryAttempts int `json:"retryAttempts"`

	// RetryDelaySeconds is the fixed wait between attempts.
	RetryDelaySeconds int `json:"retryDelaySeconds"`

	// MetricsServer configures the optional metrics endpoint served for the
	// duration of the run. A zero port disables it.
	MetricsServer struct {
		// Path is the path for the metrics server.
		Path string `json:"path"`
		// Port is the port for the metrics server.
		Port int `json:"port"`
	} `json:"metricsServer"`

	// DevelopmentMode enables development logging.
	DevelopmentMode bool `json:"developmentMode"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	config := &Config{
		KubeconfigPath:        "/kube/config",
		IdentityMapPath:       "/config/node_vm_map.json",
		SSHKeyPath:            "/secrets/id_rsa",
		SSHUser:               "root",
		ConnectTimeoutSeconds: 30,
		RetryAttempts:         3,
		RetryDelaySeconds:     10,
		DevelopmentMode:       false,
	}
	config.MetricsServer.Path = "/metrics"

	return config
}

// LoadConfig loads configuration from a YAML or JSON file path, then applies
// environment variable overrides. An empty configPath uses defaults and
// environment variables only.
func LoadConfig(configPath string) (*Config, error) {
	config := NewDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("VMREMEDY_KUBECONFIG"); val != "" {
		c.KubeconfigPath = val
	}
	if val := os.Getenv("VMREMEDY_IDENTITY_MAP"); val != "" {
		c.IdentityMapPath = val
	}
	if val := os.Getenv("VMREMEDY_SSH_KEY"); val != "" {
		c.SSHKeyPath = val
	}
	if val := os.Getenv("VMREMEDY_SSH_USER"); val != "" {
		c.SSHUser = val
	}
	if val := os.Getenv("VMREMEDY_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.MetricsServer.Port = port
		}
	}
	if val := os.Getenv("VMREMEDY_DEV_MODE"); val != "" {
		c.DevelopmentMode = val == "true" || val == "1" || val == "yes"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.KubeconfigPath == "" {
		errs = append(errs, errors.New("kubeconfigPath cannot be empty"))
	}

	if c.IdentityMapPath == "" {
		errs = append(errs, errors.New("identityMapPath cannot be empty"))
	}

	if c.SSHKeyPath == "" {
		errs = append(errs, errors.New("sshKeyPath cannot be empty"))
	}

	if c.SSHUser == "" {
		errs = append(errs, errors.New("sshUser cannot be empty"))
	}

	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("retryAttempts must be at least 1"))
	}

	if c.RetryDelaySeconds < 0 {
		errs = append(errs, errors.New("retryDelaySeconds cannot be negative"))
	}

	if c.ConnectTimeoutSeconds < 1 {
		errs = append(errs, errors.New("connectTimeoutSeconds must be at least 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
