// Package config defines the configuration model for the loan ETL: where the
// two input files live, where each stage checkpoints its output, which
// database receives the final table and where metrics go.
//
// A pipeline file is JSON or YAML, chosen by extension:
//
//	job: loan_etl
//	paths:
//	  primary: data/fintech_data.csv
//	  reference: data/states.csv
//	  clean: work/fintech_clean.parquet
//	  states: work/fintech_states.parquet
//	  combined: work/fintech_combined.parquet
//	  encoded: work/fintech_encoded.parquet
//	  lookup: work/lookup.parquet
//	storage:
//	  kind: postgres
//	  host: localhost
//	  port: 5432
//	  database: fintech
//	  user: etl
//	  table: fintech_loans
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PasswordEnv overrides Storage.Password when set, so that secrets need not
// live in pipeline files.
const PasswordEnv = "ETL_DB_PASSWORD"

// Defaults applied by Load.
const (
	DefaultJob       = "loan_etl"
	DefaultComma     = ","
	DefaultBatchSize = 5000
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines for this pipeline.
	Job string `json:"job" yaml:"job"`

	Paths   Paths         `json:"paths" yaml:"paths"`
	Source  Source        `json:"source" yaml:"source"`
	Storage Storage       `json:"storage" yaml:"storage"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// Paths names the two inputs and the checkpoint written by each stage.
type Paths struct {
	Primary   string `json:"primary" yaml:"primary"`
	Reference string `json:"reference" yaml:"reference"`

	Clean    string `json:"clean" yaml:"clean"`
	States   string `json:"states" yaml:"states"`
	Combined string `json:"combined" yaml:"combined"`
	Encoded  string `json:"encoded" yaml:"encoded"`

	// Lookup is optional. When set the encoding map is written there too.
	Lookup string `json:"lookup" yaml:"lookup"`
}

// Source configures how both CSV inputs are read.
type Source struct {
	// Comma is the field delimiter, a single character.
	Comma string `json:"comma" yaml:"comma"`

	// LazyQuotes tolerates stray quotes inside unquoted fields.
	LazyQuotes bool `json:"lazy_quotes" yaml:"lazy_quotes"`
}

// Delimiter returns the first rune of Comma, or ',' when empty.
func (s Source) Delimiter() rune {
	if s.Comma == "" {
		return ','
	}
	return []rune(s.Comma)[0]
}

// Storage selects the sink database and target table.
type Storage struct {
	// Kind selects the backend: postgres, sqlite or mssql.
	Kind string `json:"kind" yaml:"kind"`

	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`

	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table" yaml:"table"`

	// DSN, when set, is passed to the driver verbatim and the connection
	// fields above are ignored.
	DSN string `json:"dsn" yaml:"dsn"`
}

// Metrics selects where run metrics are pushed.
type Metrics struct {
	// Backend is one of none, pushgateway, datadog.
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// RuntimeConfig controls loader batching.
type RuntimeConfig struct {
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Load reads a pipeline file. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON. Unknown fields are rejected. Defaults are
// applied and PasswordEnv is honored.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	var p Pipeline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	p.ApplyDefaults()
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		p.Storage.Password = pw
	}
	return p, nil
}

// ApplyDefaults fills zero-valued optional fields.
func (p *Pipeline) ApplyDefaults() {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.Source.Comma == "" {
		p.Source.Comma = DefaultComma
	}
	if p.Runtime.BatchSize == 0 {
		p.Runtime.BatchSize = DefaultBatchSize
	}
	if p.Metrics.Backend == "" {
		p.Metrics.Backend = "none"
	}
}
