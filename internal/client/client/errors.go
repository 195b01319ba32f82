package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable, try again")
	ErrUnauthorized = errors.New("unauthorized")
)
