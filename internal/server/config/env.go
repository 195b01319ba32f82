package config

import "os"

// Secrets may come from the environment so they stay out of config files.
const (
	EnvDatabaseDSN    = "DATABASE_DSN"
	EnvJWTSecret      = "JWT_SECRET"
	EnvS3RootPassword = "S3_ROOT_PASSWORD"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvAMQPURL        = "AMQP_URL"
)

func parseEnv(config *Config) {
	setString(&config.DatabaseDSN, os.Getenv(EnvDatabaseDSN))
	setString(&config.SecretKey, os.Getenv(EnvJWTSecret))
	setString(&config.S3RootPassword, os.Getenv(EnvS3RootPassword))
	setString(&config.RedisPassword, os.Getenv(EnvRedisPassword))
	setString(&config.AMQPURL, os.Getenv(EnvAMQPURL))
}
