// Package ports holds the interfaces that connect the gateway's layers.
// Handlers call the GatewayService port; the application calls the Upstream
// port; readiness probes go through HealthRegistry. Concrete adapters live
// under internal/adapters and are wired together in cmd/server.
package ports
