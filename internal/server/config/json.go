package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/assetcatalog/internal/flagx"
	"github.com/dmitrijs2005/assetcatalog/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	EndpointAddrMetrics string         `json:"endpoint_addr_metrics"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	PresignValidity     timex.Duration `json:"presign_validity"`
	RetentionPeriod     timex.Duration `json:"retention_period"`
	PurgeInterval       timex.Duration `json:"purge_interval"`
	LogLevel            string         `json:"log_level"`
	LogFile             string         `json:"log_file"`
	StrictEmptyAnd      bool           `json:"strict_empty_and"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// Every field present in JsonConfig is copied into config, so a JSON file
// is expected to be complete; flags are applied afterwards.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.EndpointAddrMetrics = c.EndpointAddrMetrics
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.PresignValidity = c.PresignValidity.Duration
	config.RetentionPeriod = c.RetentionPeriod.Duration
	config.PurgeInterval = c.PurgeInterval.Duration
	config.LogLevel = c.LogLevel
	config.LogFile = c.LogFile
	config.StrictEmptyAnd = c.StrictEmptyAnd
}
