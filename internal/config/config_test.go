/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/suparena/dashboard/errors"
)

const sampleConfig = `
app:
  name: dashboard-test
  log_level: debug
server:
  addr: ":8081"
  read_timeout: 5s
pages_file: /etc/dashboard/pages.yaml
mysql:
  dsn: "user:pass@tcp(localhost:3306)/shop?parseTime=true"
redis:
  addr: "localhost:6379"
aws:
  region: eu-west-1
sources:
  - name: imports
    type: csv
    csv:
      path: /data/imports.csv
      delimiter: ";"
      has_header: true
      count_max_size: 1048576
      count_ttl: 10m
  - name: products
    type: sql
    sql:
      table: products
      search_columns: [name]
      sort_columns: [name, price]
  - name: events
    type: dynamodb
    dynamodb:
      table: events
      key_condition: "PK = :pk"
      values:
        ":pk": "TENANT#1"
      page_size: 50
`

func load(t *testing.T, content string) *Config {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/etc/dashboard/config.yaml", []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(fs, "/etc/dashboard/config.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, sampleConfig)

	if cfg.App.Name != "dashboard-test" || cfg.App.LogLevel != "debug" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Server.Addr != ":8081" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("WriteTimeout default not applied: %v", cfg.Server.WriteTimeout)
	}
	if cfg.Redis.Prefix != "dashboard:count:" {
		t.Errorf("redis prefix default not applied: %q", cfg.Redis.Prefix)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(cfg.Sources))
	}

	csv := cfg.Sources[0].CSV
	if csv.Delimiter != ";" || !csv.HasHeader || csv.CountMaxSize != 1<<20 || csv.CountTTL != 10*time.Minute {
		t.Errorf("csv = %+v", csv)
	}
	if cols := cfg.Sources[1].SQL.SortColumns; len(cols) != 2 || cols[1] != "price" {
		t.Errorf("sql sort columns = %v", cols)
	}
	ddb := cfg.Sources[2].DynamoDB
	if ddb.Values[":pk"] != "TENANT#1" || ddb.PageSize != 50 {
		t.Errorf("dynamodb = %+v", ddb)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DASHBOARD_SERVER_ADDR", ":9090")
	t.Setenv("DASHBOARD_APP_LOG_LEVEL", "warn")

	cfg := load(t, sampleConfig)
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.App.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override", cfg.App.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/nope.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"UnknownType", func(c *Config) { c.Sources[0].Type = "ftp" }},
		{"MissingName", func(c *Config) { c.Sources[0].Name = "" }},
		{"DuplicateName", func(c *Config) { c.Sources[1].Name = "imports" }},
		{"CSVWithoutPath", func(c *Config) { c.Sources[0].CSV.Path = "" }},
		{"LongDelimiter", func(c *Config) { c.Sources[0].CSV.Delimiter = ";;" }},
		{"SQLWithoutDSN", func(c *Config) { c.MySQL.DSN = "" }},
		{"SQLWithoutTable", func(c *Config) { c.Sources[1].SQL.Table = "" }},
		{"DynamoDBWithoutRegion", func(c *Config) { c.AWS.Region = "" }},
		{"DynamoDBWithoutKeyCondition", func(c *Config) { c.Sources[2].DynamoDB.KeyCondition = "" }},
		{"BadLogLevel", func(c *Config) { c.App.LogLevel = "loud" }},
		{"MissingAddr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := load(t, sampleConfig)
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
