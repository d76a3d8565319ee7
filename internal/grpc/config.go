// Package grpc serves the query surface over gRPC. The service speaks
// plain request/response structs encoded as CBOR; no generated stubs
// are involved, the service descriptor is written by hand.
package grpc

import (
	"fmt"
	"net"
)

// ServerConfig holds the gRPC listener settings.
type ServerConfig struct {
	// Address is the listen address, e.g. "127.0.0.1:50051".
	Address string

	// MaxRecvMsgSize caps inbound message size in bytes. Zero means
	// 4MB.
	MaxRecvMsgSize int

	// MaxSendMsgSize caps outbound message size in bytes. Zero means
	// 4MB.
	MaxSendMsgSize int
}

const defaultMaxMsgSize = 4 * 1024 * 1024

// DefaultServerConfig returns a config listening on localhost.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:        "127.0.0.1:50051",
		MaxRecvMsgSize: defaultMaxMsgSize,
		MaxSendMsgSize: defaultMaxMsgSize,
	}
}

// Validate checks the configuration.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}
	if c.MaxRecvMsgSize < 0 {
		return fmt.Errorf("max_recv_msg_size must not be negative")
	}
	if c.MaxSendMsgSize < 0 {
		return fmt.Errorf("max_send_msg_size must not be negative")
	}
	return nil
}

// recvMsgSize returns the effective receive cap.
func (c *ServerConfig) recvMsgSize() int {
	if c.MaxRecvMsgSize == 0 {
		return defaultMaxMsgSize
	}
	return c.MaxRecvMsgSize
}

// sendMsgSize returns the effective send cap.
func (c *ServerConfig) sendMsgSize() int {
	if c.MaxSendMsgSize == 0 {
		return defaultMaxMsgSize
	}
	return c.MaxSendMsgSize
}
