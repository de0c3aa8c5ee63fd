// Package providers contains dependency injection providers for the Pictor server.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// serverVersion is reported by the health endpoint and the OpenAPI spec.
	serverVersion = "0.1.0"
)
