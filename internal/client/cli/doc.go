// Package cli implements milestonectl, the command-line client for the
// milestone API.
//
// Each subcommand maps onto one RPC. Files are read from disk for uploads,
// and signed URLs returned by download, preview and proof-url can be
// fetched straight into the download directory. The access token comes
// from --token, MILESTONECTL_TOKEN or, on a terminal, a hidden prompt.
package cli
