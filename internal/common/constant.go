package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// MaxUploadSize caps payment proofs and deliverables (5 MB).
const MaxUploadSize int64 = 5 * 1024 * 1024
