package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineFile is the optional YAML pipeline definition. Fields left out
// keep the values from the environment.
type PipelineFile struct {
	Name     string `yaml:"name"`
	Bucket   string `yaml:"bucket"`
	Object   string `yaml:"object"`
	Table    string `yaml:"table"`
	Schedule *struct {
		Interval   *time.Duration `yaml:"interval"`
		Retries    *int           `yaml:"retries"`
		RetryDelay *time.Duration `yaml:"retry_delay"`
	} `yaml:"schedule"`
	Lineage *struct {
		Enabled   *bool   `yaml:"enabled"`
		Transport *string `yaml:"transport"`
		Namespace *string `yaml:"namespace"`
	} `yaml:"lineage"`
}

// LoadPipelineFile reads and parses a pipeline definition from the given path.
func LoadPipelineFile(filePath string) (*PipelineFile, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file '%s': %w", filePath, err)
	}

	var pf PipelineFile
	if err := yaml.Unmarshal(bytes, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline file '%s': %w", filePath, err)
	}
	return &pf, nil
}

// Apply overlays the file onto cfg and re-validates it.
func (pf *PipelineFile) Apply(cfg *App) error {
	if pf.Name != "" {
		cfg.PipelineName = pf.Name
	}
	if pf.Bucket != "" {
		cfg.Storage.Bucket = pf.Bucket
	}
	if pf.Object != "" {
		cfg.Storage.Object = pf.Object
	}
	if pf.Table != "" {
		cfg.DB.Table = pf.Table
	}
	if s := pf.Schedule; s != nil {
		if s.Interval != nil {
			cfg.Schedule.Interval = *s.Interval
		}
		if s.Retries != nil {
			cfg.Schedule.Retries = *s.Retries
		}
		if s.RetryDelay != nil {
			cfg.Schedule.RetryDelay = *s.RetryDelay
		}
	}
	if l := pf.Lineage; l != nil {
		if l.Enabled != nil {
			cfg.Lineage.Enabled = *l.Enabled
		}
		if l.Transport != nil {
			cfg.Lineage.Transport = *l.Transport
		}
		if l.Namespace != nil {
			cfg.Lineage.Namespace = *l.Namespace
		}
	}
	return cfg.Validate()
}
