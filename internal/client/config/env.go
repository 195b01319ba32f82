package config

import "os"

const (
	EnvServerAddr  = "MILESTONECTL_ADDR"
	EnvAccessToken = "MILESTONECTL_TOKEN"
)

func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvServerAddr); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv(EnvAccessToken); v != "" {
		cfg.AccessToken = v
	}
}
