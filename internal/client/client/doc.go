// Package client is the caller side of the milestone API.
//
// GRPCClient manages one connection to the server, attaches the access
// token to every call and maps gRPC status codes back onto the shared
// sentinel errors in internal/common, so callers match failures with
// errors.Is exactly as the server raised them.
package client
