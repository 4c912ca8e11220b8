// Package transport performs requests against the debug server and hands back
// decoded JSON values. It has no retry or scheduling logic of its own.
package transport

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	// ErrRequest is returned when the request could not be completed
	ErrRequest = errors.New("transport request failed")
	// ErrDecode is returned when the response body is not valid JSON
	ErrDecode = errors.New("transport decode failed")
)

// Shim performs a single request to baseURL+path. Success yields the decoded
// payload; any failure yields an error wrapping ErrRequest or ErrDecode.
type Shim interface {
	Call(ctx context.Context, baseURL, path string) (gjson.Result, error)
}

// ShimFunc adapts an ordinary function to the Shim interface
type ShimFunc func(ctx context.Context, baseURL, path string) (gjson.Result, error)

// Call implements Shim
func (f ShimFunc) Call(ctx context.Context, baseURL, path string) (gjson.Result, error) {
	return f(ctx, baseURL, path)
}
