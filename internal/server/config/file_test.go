package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := defaults()
		parseFile(cfg)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, dir, "cfg.json", map[string]any{
			"endpoint_addr_grpc":  "www.example:9000",
			"database_dsn":        "postgres://db",
			"secret_key":          "my_secret_key",
			"s3_base_endpoint":    "http://minio:9000",
			"proofs_bucket":       "proofs",
			"redis_addr":          "",
			"uploads_per_minute":  0,
			"sweep_interval":      "2m",
			"orphan_grace":        int64(30 * time.Second),
			"deliverables_bucket": "work",
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := defaults()
		parseFile(cfg)

		want := defaults()
		want.EndpointAddrGRPC = "www.example:9000"
		want.DatabaseDSN = "postgres://db"
		want.SecretKey = "my_secret_key"
		want.S3BaseEndpoint = "http://minio:9000"
		want.ProofsBucket = "proofs"
		want.DeliverablesBucket = "work"
		want.UploadsPerMinute = 0
		want.SweepInterval = 2 * time.Minute
		want.OrphanGrace = 30 * time.Second
		assert.Equal(t, want, cfg)
	})

	t.Run("loads from yaml", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"endpoint_addr_http: \":9090\"\n"+
				"amqp_url: amqp://guest:guest@mq:5672/\n"+
				"log_backend: zap\n"+
				"redis_db: 2\n"+
				"preview_ttl: 12h\n"), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := defaults()
		parseFile(cfg)

		want := defaults()
		want.EndpointAddrHTTP = ":9090"
		want.AMQPURL = "amqp://guest:guest@mq:5672/"
		want.LogBackend = "zap"
		want.RedisDB = 2
		want.PreviewTTL = 12 * time.Hour
		assert.Equal(t, want, cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.yml")}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})
}
