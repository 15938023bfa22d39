// Package api provides thin, typed callers for the backend REST endpoints.
// All transport, authentication, and response validation concerns live in
// the gateway; these wrappers only know the request and response shapes.
package api

import (
	"tradegate/internal/gateway"
)

// Client exposes the backend's domain endpoints.
type Client struct {
	gw *gateway.Client
}

// NewClient creates an API client on top of an authenticated gateway.
func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Gateway returns the underlying gateway client.
func (c *Client) Gateway() *gateway.Client {
	return c.gw
}
