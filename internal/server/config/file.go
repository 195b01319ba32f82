package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/milestonegate/internal/flagx"
	"github.com/dmitrijs2005/milestonegate/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// "1m" style strings or integer nanoseconds. Zero values leave the current
// setting untouched.
type FileConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP   string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey          string         `json:"secret_key" yaml:"secret_key"`
	S3RootUser         string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Region           string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ProofsBucket       string         `json:"proofs_bucket" yaml:"proofs_bucket"`
	DeliverablesBucket string         `json:"deliverables_bucket" yaml:"deliverables_bucket"`
	RedisAddr          string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword      string         `json:"redis_password" yaml:"redis_password"`
	RedisDB            int            `json:"redis_db" yaml:"redis_db"`
	AMQPURL            string         `json:"amqp_url" yaml:"amqp_url"`
	LogBackend         string         `json:"log_backend" yaml:"log_backend"`
	UploadsPerMinute   *int           `json:"uploads_per_minute" yaml:"uploads_per_minute"`
	SweepInterval      timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	OrphanGrace        timex.Duration `json:"orphan_grace" yaml:"orphan_grace"`
	PreviewTTL         timex.Duration `json:"preview_ttl" yaml:"preview_ttl"`
	SeedFile           string         `json:"seed_file" yaml:"seed_file"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON. An unreadable
// or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.ProofsBucket, c.ProofsBucket)
	setString(&config.DeliverablesBucket, c.DeliverablesBucket)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.SeedFile, c.SeedFile)

	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if c.UploadsPerMinute != nil {
		config.UploadsPerMinute = *c.UploadsPerMinute
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.OrphanGrace.Duration != 0 {
		config.OrphanGrace = c.OrphanGrace.Duration
	}
	if c.PreviewTTL.Duration != 0 {
		config.PreviewTTL = c.PreviewTTL.Duration
	}
}
