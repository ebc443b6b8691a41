// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

/*
server.go - Localis Server Container Harness

Boots the published Localis server image in a throwaway container for
black-box API tests. The container runs plain HTTP with an in-memory
database and deterministic bootstrap credentials, so tests can drive
the full API surface without fixtures on the host.

Container Defaults:
  - Image ghcr.io/localis-app/localis:latest (override: WithServerImage)
  - TLS disabled (TLS_CERT and TLS_KEY cleared), HTTP on port 8443
  - In-memory DuckDB (DUCKDB_PATH cleared)
  - Demo catalog seeded (disable: WithoutDemoData)
  - Bootstrap admin "admin" / "integration-admin-pw"

Readiness is the container port accepting connections and /health
answering 200, which requires the database connection to be up.

Related Files:
  - containers.go: Docker gate and shared lifecycle helpers
  - server_test.go: End-to-end exercise of this harness
*/

package testinfra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultServerImage is the published server image used when no
	// override is supplied.
	DefaultServerImage = "ghcr.io/localis-app/localis:latest"

	// DefaultServerPort is the in-container HTTP port.
	DefaultServerPort = "8443"

	// DefaultAdminLogin and DefaultAdminPassword are the bootstrap
	// admin credentials the harness provisions in the container.
	DefaultAdminLogin    = "admin"
	DefaultAdminPassword = "integration-admin-pw"

	// defaultJWTSecret signs session tokens inside the container. It
	// only ever lives for the duration of a test run.
	defaultJWTSecret = "integration-only-jwt-secret-0123456789abcdef"

	defaultServerStartTimeout = 60 * time.Second
)

// ServerContainer wraps a running Localis server container together
// with the connection details tests need.
type ServerContainer struct {
	testcontainers.Container

	// URL is the base URL of the containerized server, for example
	// "http://localhost:49213". API routes live under /api/v1.
	URL string

	// AdminLogin and AdminPassword are the bootstrap admin
	// credentials provisioned at startup.
	AdminLogin    string
	AdminPassword string
}

// serverConfig holds the resolved container options.
type serverConfig struct {
	image        string
	env          map[string]string
	seedDemoData bool
	startTimeout time.Duration
}

func defaultServerConfig() *serverConfig {
	return &serverConfig{
		image:        DefaultServerImage,
		env:          make(map[string]string),
		seedDemoData: true,
		startTimeout: defaultServerStartTimeout,
	}
}

// ServerOption customizes the server container before start.
type ServerOption func(*serverConfig)

// WithServerImage overrides the container image, for example to pin a
// release tag or point at a locally built candidate.
func WithServerImage(image string) ServerOption {
	return func(c *serverConfig) {
		c.image = image
	}
}

// WithServerEnv sets an extra environment variable in the container.
// Values set here win over the harness defaults.
func WithServerEnv(key, value string) ServerOption {
	return func(c *serverConfig) {
		c.env[key] = value
	}
}

// WithoutDemoData starts the server with an empty catalog instead of
// the seeded demo places.
func WithoutDemoData() ServerOption {
	return func(c *serverConfig) {
		c.seedDemoData = false
	}
}

// WithStartTimeout overrides how long to wait for the container to
// become healthy. Cold image pulls and slow CI runners need more than
// the default.
func WithStartTimeout(timeout time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.startTimeout = timeout
	}
}

// NewServerContainer starts a Localis server container and waits until
// /health answers. The caller owns the container and must terminate
// it, typically via CleanupContainer.
func NewServerContainer(ctx context.Context, opts ...ServerOption) (*ServerContainer, error) {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	env := map[string]string{
		// Plain HTTP inside the test network. The host-mapped port is
		// random, so a baked-in certificate could not cover it.
		"TLS_CERT": "",
		"TLS_KEY":  "",

		// In-memory database, torn down with the container.
		"DUCKDB_PATH": "",

		"JWT_SECRET":     defaultJWTSecret,
		"ADMIN_USERNAME": DefaultAdminLogin,
		"ADMIN_PASSWORD": DefaultAdminPassword,
		"SEED_DEMO_DATA": strconv.FormatBool(cfg.seedDemoData),
		"LOG_FORMAT":     "console",
	}
	for k, v := range cfg.env {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultServerPort + "/tcp"},
		Env:          env,
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultServerPort+"/tcp"),
			wait.ForHTTP("/health").WithPort(DefaultServerPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start server container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, DefaultServerPort+"/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &ServerContainer{
		Container:     container,
		URL:           fmt.Sprintf("http://%s:%s", host, mapped.Port()),
		AdminLogin:    DefaultAdminLogin,
		AdminPassword: DefaultAdminPassword,
	}, nil
}

// Terminate stops and removes the container.
func (c *ServerContainer) Terminate(ctx context.Context) error {
	if c.Container == nil {
		return nil
	}
	return c.Container.Terminate(ctx)
}

// APIEndpoint returns the full URL for an API route, for example
// APIEndpoint("/places") on a local container yields
// "http://localhost:49213/api/v1/places".
func (c *ServerContainer) APIEndpoint(path string) string {
	return c.URL + "/api/v1" + path
}

// Login authenticates against the containerized server and returns a
// bearer token for subsequent requests.
func (c *ServerContainer) Login(ctx context.Context, login, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"login":  login,
		"passwd": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.APIEndpoint("/auth/login"), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID    int64  `json:"id"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if envelope.Data.Token == "" {
		return "", fmt.Errorf("login response contained no token")
	}

	return envelope.Data.Token, nil
}

// Logs returns the captured container log stream, useful when a
// black-box assertion fails.
func (c *ServerContainer) Logs(ctx context.Context) (string, error) {
	if c.Container == nil {
		return "", fmt.Errorf("container not started")
	}

	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container logs: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read container logs: %w", err)
	}

	return string(data), nil
}
