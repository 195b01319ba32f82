package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "downloads", c.DownloadDir)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Empty(t, c.AccessToken)
}

func TestLoad_Sources(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server_endpoint_addr: gate:7000\nrequest_timeout: 5s\n"), 0o600))

	jsonPath := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"download_dir":"out","request_timeout":1000000000}`), 0o600))

	tests := []struct {
		name string
		path string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults only",
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", DownloadDir: "downloads", RequestTimeout: 30 * time.Second},
		},
		{
			name: "yaml file",
			path: yamlPath,
			want: Config{ServerEndpointAddr: "gate:7000", DownloadDir: "downloads", RequestTimeout: 5 * time.Second},
		},
		{
			name: "json file",
			path: jsonPath,
			want: Config{ServerEndpointAddr: "127.0.0.1:50051", DownloadDir: "out", RequestTimeout: time.Second},
		},
		{
			name: "env beats file",
			path: yamlPath,
			env:  map[string]string{EnvServerAddr: "env:1", EnvAccessToken: "tok"},
			want: Config{ServerEndpointAddr: "env:1", AccessToken: "tok", DownloadDir: "downloads", RequestTimeout: 5 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvServerAddr, "")
			t.Setenv(EnvAccessToken, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(tt.path)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, *cfg))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	_, err := Load(bad)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
