// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

/*
containers.go - Shared Container Test Helpers

Docker availability gate, container lifecycle helpers, and diagnostic
utilities shared by all container-based integration tests.

Related Files:
  - server.go: Localis server container harness
  - directions_server.go: In-process OSRM mock (no container)
*/

package testinfra

import (
	"context"
	"os/exec"
	"sort"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// dockerProbeTimeout bounds the docker CLI probe so a wedged daemon
// cannot hang the test setup.
const dockerProbeTimeout = 5 * time.Second

// SkipIfNoDocker skips the calling test when no usable Docker daemon
// answers. Call it at the top of every container test so the suite
// degrades to skips on machines without Docker.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Docker is not available, skipping container test")
	}
}

// IsDockerAvailable reports whether a Docker daemon is reachable. The
// probe goes through the docker CLI so DOCKER_HOST, contexts, and
// rootless setups resolve the same way they do for testcontainers.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), dockerProbeTimeout)
	defer cancel()

	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// ContainerLogger adapts testing.T to the testcontainers logging
// interface so container lifecycle output lands in the test log.
type ContainerLogger struct {
	t *testing.T
}

// NewContainerLogger creates a logger bound to the given test.
func NewContainerLogger(t *testing.T) *ContainerLogger {
	return &ContainerLogger{t: t}
}

// Printf implements testcontainers.Logging.
func (l *ContainerLogger) Printf(format string, v ...interface{}) {
	l.t.Helper()
	l.t.Logf(format, v...)
}

// CleanupContainer terminates a container, logging instead of failing
// when termination errors. Intended for deferred cleanup where the
// test outcome is already decided.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// ContainerInfo is a diagnostic snapshot of a running container.
type ContainerInfo struct {
	ID    string
	Host  string
	Ports []string
	State string
}

// GetContainerInfo collects diagnostic details about a container for
// test logging. Lookup failures leave the corresponding field empty so
// callers can log whatever was available.
func GetContainerInfo(ctx context.Context, container testcontainers.Container) ContainerInfo {
	info := ContainerInfo{
		ID: container.GetContainerID(),
	}
	if len(info.ID) > 12 {
		info.ID = info.ID[:12]
	}

	if host, err := container.Host(ctx); err == nil {
		info.Host = host
	}

	if ports, err := container.Ports(ctx); err == nil {
		for port := range ports {
			info.Ports = append(info.Ports, string(port))
		}
		sort.Strings(info.Ports)
	}

	if state, err := container.State(ctx); err == nil {
		info.State = state.Status
	}

	return info
}
