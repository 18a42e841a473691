package singleinstance

// Single-instance ownership plus remote capture triggering. The resident
// process owns a loopback TCP endpoint; a second invocation with --capture
// delegates one activation to the resident instead of starting again.

import (
	"context"
)

// Server owns the TCP endpoint and receives capture-trigger requests.
type Server interface {
	// Start binds the first port of the configured range. Failure means a
	// resident already owns it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted trigger request, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one pending trigger request awaiting an acknowledgement.
type Conn interface {
	// RespondOK acknowledges that a capture session was started.
	RespondOK() error
	// RespondBusy tells the client a session is already active.
	RespondBusy() error
	// RespondError reports a failure with a human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Client delegates an activation to a resident server.
type Client interface {
	// TryCapture scans the port range for a resident and asks it to start a
	// capture session. delegated is false when no resident was found.
	TryCapture(ctx context.Context) (delegated bool, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
