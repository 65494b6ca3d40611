/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the service configuration from YAML with DASHBOARD_
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/suparena/dashboard/errors"
)

// EnvPrefix prefixes every environment override, e.g. DASHBOARD_SERVER_ADDR.
const EnvPrefix = "DASHBOARD"

// Source types.
const (
	SourceCSV      = "csv"
	SourceSQL      = "sql"
	SourceDynamoDB = "dynamodb"
)

// Config is the global configuration.
type Config struct {
	App       AppConfig      `mapstructure:"app"`
	Server    ServerConfig   `mapstructure:"server"`
	PagesFile string         `mapstructure:"pages_file" validate:"required"`
	Sources   []SourceConfig `mapstructure:"sources" validate:"dive"`
	MySQL     MySQLConfig    `mapstructure:"mysql"`
	Redis     RedisConfig    `mapstructure:"redis"`
	AWS       AWSConfig      `mapstructure:"aws"`
}

type AppConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	Mode         string        `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SourceConfig declares one datasource. Only the block matching Type is read.
type SourceConfig struct {
	Name     string         `mapstructure:"name" validate:"required"`
	Type     string         `mapstructure:"type" validate:"required,oneof=csv sql dynamodb"`
	CSV      CSVConfig      `mapstructure:"csv"`
	SQL      SQLConfig      `mapstructure:"sql"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

type CSVConfig struct {
	Path      string   `mapstructure:"path"`
	Delimiter string   `mapstructure:"delimiter" validate:"omitempty,len=1"`
	Comment   string   `mapstructure:"comment" validate:"omitempty,len=1"`
	Encoding  string   `mapstructure:"encoding"`
	HasHeader bool     `mapstructure:"has_header"`
	Columns   []string `mapstructure:"columns"`
	// CountMaxSize is the largest file, in bytes, that is scanned for a count.
	// Zero disables counting.
	CountMaxSize int64         `mapstructure:"count_max_size" validate:"gte=0"`
	CountTTL     time.Duration `mapstructure:"count_ttl"`
}

type SQLConfig struct {
	Table         string   `mapstructure:"table"`
	SearchColumns []string `mapstructure:"search_columns"`
	FilterColumns []string `mapstructure:"filter_columns"`
	SortColumns   []string `mapstructure:"sort_columns"`
	DefaultOrder  string   `mapstructure:"default_order"`
	SkipCount     bool     `mapstructure:"skip_count"`
}

type DynamoDBConfig struct {
	Table        string `mapstructure:"table"`
	IndexName    string `mapstructure:"index_name"`
	KeyCondition string `mapstructure:"key_condition"`
	// Values binds expression placeholders to string attribute values.
	Values       map[string]string `mapstructure:"values"`
	PageSize     int32             `mapstructure:"page_size" validate:"gte=0"`
	MaxRetries   int               `mapstructure:"max_retries" validate:"gte=0"`
	RetryBackoff time.Duration     `mapstructure:"retry_backoff"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AWSConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dashboard")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("pages_file", "pages.yaml")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "dashboard:count:")
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.access_key", "")
	v.SetDefault("aws.secret_key", "")
	v.SetDefault("aws.endpoint", "")
}

// Load reads the YAML file at path from fs and applies environment overrides.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints, then the settings each source type needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Namespace(), fmt.Sprintf("failed %q constraint", fe.Tag()))
		}
		return err
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		if seen[src.Name] {
			return errors.NewValidationError(field+".name", fmt.Sprintf("duplicate source %q", src.Name))
		}
		seen[src.Name] = true

		switch src.Type {
		case SourceCSV:
			if src.CSV.Path == "" {
				return errors.NewValidationError(field+".csv.path", "is required")
			}
		case SourceSQL:
			if c.MySQL.DSN == "" {
				return errors.NewValidationError("mysql.dsn", fmt.Sprintf("is required by sql source %q", src.Name))
			}
			if src.SQL.Table == "" {
				return errors.NewValidationError(field+".sql.table", "is required")
			}
		case SourceDynamoDB:
			if c.AWS.Region == "" {
				return errors.NewValidationError("aws.region", fmt.Sprintf("is required by dynamodb source %q", src.Name))
			}
			if src.DynamoDB.Table == "" || src.DynamoDB.KeyCondition == "" {
				return errors.NewValidationError(field+".dynamodb", "table and key_condition are required")
			}
		}
	}
	return nil
}
