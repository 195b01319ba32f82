package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-w", ":8081", "-d", "db", "-s", "secret",
			"-u", "user", "-p", "password", "-g", "us-west-1", "-e", "http://endpoint",
			"-b", "proofs", "-v", "work", "-r", "redis:6379", "-q", "amqp://mq", "-l", "zap",
			"-m", "3", "-i", "5", "-f", "seed.yaml",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrGRPC:   "127.0.0.1:9090",
				EndpointAddrHTTP:   ":8081",
				DatabaseDSN:        "db",
				SecretKey:          "secret",
				S3RootUser:         "user",
				S3RootPassword:     "password",
				S3Region:           "us-west-1",
				S3BaseEndpoint:     "http://endpoint",
				ProofsBucket:       "proofs",
				DeliverablesBucket: "work",
				RedisAddr:          "redis:6379",
				AMQPURL:            "amqp://mq",
				LogBackend:         "zap",
				UploadsPerMinute:   3,
				SweepInterval:      5 * time.Minute,
				SeedFile:           "seed.yaml",
			}},
		{name: "Test2 bad int", args: []string{"cmd", "-m", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
