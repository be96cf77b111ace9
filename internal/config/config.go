package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const FileName = "planner.yml"

// Config models planner.yml.
type Config struct {
	Storage struct {
		DataDir     string `yaml:"data_dir" json:"data_dir"`
		File        string `yaml:"file" json:"file"`
		StrictLists bool   `yaml:"strict_lists" json:"strict_lists"`
	} `yaml:"storage" json:"storage"`
	Defaults struct {
		TaskStatus  string `yaml:"task_status" json:"task_status"`
		ProjectKind string `yaml:"project_kind" json:"project_kind"`
	} `yaml:"defaults" json:"defaults"`
	Log struct {
		Level   string `yaml:"level" json:"level"`
		Console bool   `yaml:"console" json:"console"`
	} `yaml:"log" json:"log"`
}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.File) == "" {
		return fmt.Errorf("config.storage.file is required")
	}
	if strings.ContainsAny(c.Storage.File, `/\`) {
		return fmt.Errorf("config.storage.file must be a file name, got %q", c.Storage.File)
	}
	if strings.TrimSpace(c.Defaults.TaskStatus) == "" {
		return fmt.Errorf("config.defaults.task_status is required")
	}
	if strings.TrimSpace(c.Defaults.ProjectKind) == "" {
		return fmt.Errorf("config.defaults.project_kind is required")
	}
	if c.Log.Level != "" && !logLevels[c.Log.Level] {
		return fmt.Errorf("config.log.level %q is not one of trace, debug, info, warn, error, disabled", c.Log.Level)
	}
	return nil
}

// Path returns the config file path inside a data directory.
func Path(dataDir string) string {
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, FileName)
}

// GenerateDefault returns default config YAML for a data directory.
func GenerateDefault(dataDir string) string {
	return fmt.Sprintf(defaultTemplate, dataDir)
}

// Default returns the default Config for a data directory.
func Default(dataDir string) *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(GenerateDefault(dataDir))).Decode(&cfg)
	cfg.Storage.DataDir = dataDir
	return &cfg
}

// Load reads and validates config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with planner config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults for dataDir if path does not exist.
func LoadOptional(path, dataDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(dataDir), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep
// their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const defaultTemplate = `storage:
  data_dir: %q
  file: planner.db
  strict_lists: false

defaults:
  task_status: Inbox
  project_kind: Active

log:
  level: info
  console: true
`
