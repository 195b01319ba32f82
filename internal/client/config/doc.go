// Package config loads runtime configuration for the milestonectl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file passed as --config.
//  3. Environment: MILESTONECTL_ADDR and MILESTONECTL_TOKEN.
//  4. Command-line flags, applied by the cli package after Load returns.
//
// # File schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	server_endpoint_addr: 127.0.0.1:50051
//	download_dir: downloads
//	request_timeout: 30s
//
// The access token is deliberately not read from the file.
package config
