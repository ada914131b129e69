package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with every field optional, so a YAML overlay can
// override any subset of the environment-derived values. Intended for local
// development; deployed environments configure through the environment only.
type fileConfig struct {
	Environment      *string `yaml:"environment"`
	LogLevel         *string `yaml:"logLevel"`
	AWSRegion        *string `yaml:"awsRegion"`
	TableName        *string `yaml:"tableName"`
	IndexName        *string `yaml:"indexName"`
	IsOffline        *bool   `yaml:"isOffline"`
	DynamoDBEndpoint *string `yaml:"dynamodbEndpoint"`
	HTTPAddr         *string `yaml:"httpAddr"`
	DefaultUserID    *string `yaml:"defaultUserId"`
	MetricsNamespace *string `yaml:"metricsNamespace"`

	Features *struct {
		EnableMetrics        *bool `yaml:"enableMetrics"`
		EnableTracing        *bool `yaml:"enableTracing"`
		EnableCircuitBreaker *bool `yaml:"enableCircuitBreaker"`
	} `yaml:"features"`
}

// applyFile overlays the YAML file at path onto cfg. Absent keys leave the
// corresponding value untouched.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	setString(&cfg.Environment, file.Environment)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.AWSRegion, file.AWSRegion)
	setString(&cfg.TableName, file.TableName)
	setString(&cfg.IndexName, file.IndexName)
	setBool(&cfg.IsOffline, file.IsOffline)
	setString(&cfg.DynamoDBEndpoint, file.DynamoDBEndpoint)
	setString(&cfg.HTTPAddr, file.HTTPAddr)
	setString(&cfg.DefaultUserID, file.DefaultUserID)
	setString(&cfg.MetricsNamespace, file.MetricsNamespace)

	if file.Features != nil {
		setBool(&cfg.Features.EnableMetrics, file.Features.EnableMetrics)
		setBool(&cfg.Features.EnableTracing, file.Features.EnableTracing)
		setBool(&cfg.Features.EnableCircuitBreaker, file.Features.EnableCircuitBreaker)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
