// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

//go:build integration

/*
Package testinfra provides container and mock-server infrastructure for
integration tests.

The package is only compiled with the "integration" build tag so that
the testcontainers dependency stays out of ordinary unit test builds:

	go test -tags integration ./...

Two harnesses are provided:

  - ServerContainer boots the published Localis server image in a
    throwaway Docker container, configured for plain HTTP with an
    in-memory database and deterministic admin credentials, for
    black-box tests against the real API surface.
  - MockDirectionsServer is an in-process OSRM stand-in with request
    capture, used to test route planning against a live HTTP boundary
    without an actual routing engine.

Typical usage:

	func TestPlacesAPI(t *testing.T) {
		testinfra.SkipIfNoDocker(t)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		server, err := testinfra.NewServerContainer(ctx)
		if err != nil {
			t.Fatalf("failed to start server container: %v", err)
		}
		defer testinfra.CleanupContainer(t, ctx, server)

		token, err := server.Login(ctx, server.AdminLogin, server.AdminPassword)
		if err != nil {
			t.Fatalf("admin login failed: %v", err)
		}
		_ = token // drive the API under test
	}

Container tests need a reachable Docker daemon and network access to
pull the server image on first run. SkipIfNoDocker turns a missing
daemon into a test skip rather than a failure, so the integration suite
is safe to run on machines without Docker.
*/
package testinfra
