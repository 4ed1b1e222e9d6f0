// Package delivery contains the transports that expose the use cases.
package delivery

import "context"

// Delivery is a long-running transport started by the application host.
type Delivery interface {
	// Serve blocks until the transport stops or fails.
	Serve(ctx context.Context) error
}
