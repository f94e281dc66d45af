// Package client talks to the catalog gRPC service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     search, asset lifecycle and tag operations.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, selects the JSON codec, injects the access token via an
//     interceptor, applies a per-call timeout, and maps gRPC status codes to
//     sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrInvalid.
package client
