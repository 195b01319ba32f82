package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/milestonegate/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-b string   payment proofs bucket
//	-v string   deliverables bucket
//	-r string   Redis address, empty disables rate limiting and preview caching
//	-q string   AMQP URL, empty disables event publishing
//	-l string   log backend: slog or zap
//	-m int      uploads per minute per actor
//	-i int      orphan sweep interval, minutes
//	-f string   seed fixture file (YAML)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-s", "-u", "-p", "-g", "-e", "-b", "-v", "-r", "-q", "-l", "-m", "-i", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.ProofsBucket, "b", config.ProofsBucket, "payment proofs bucket")
	fs.StringVar(&config.DeliverablesBucket, "v", config.DeliverablesBucket, "deliverables bucket")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.AMQPURL, "q", config.AMQPURL, "AMQP URL")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.IntVar(&config.UploadsPerMinute, "m", config.UploadsPerMinute, "uploads per minute per actor")
	fs.StringVar(&config.SeedFile, "f", config.SeedFile, "seed fixture file")

	sweepInterval := fs.Int("i", int(config.SweepInterval.Minutes()), "orphan sweep interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
