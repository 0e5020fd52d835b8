// Package delivery defines the transport entry points started by the application.
package delivery

import "context"

// Delivery is a long-running server started from an fx invoke.
type Delivery interface {
	Serve(ctx context.Context) error
}
