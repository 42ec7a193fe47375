// Package chat provides the lifecycle interface for chat front-ends that
// deliver predictit commands to the dispatcher.
package chat

import (
	"context"
)

type Transport interface {
	// Start runs the transport until ctx is cancelled or it fails.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
