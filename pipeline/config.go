package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// Config mirrors the YAML schema for declaring a pipeline:
//
//	pipeline:
//	  name: session-classifier
//	  verbose: 1
//	  stages:
//	    - type: pca
//	      config: {components: 2}
//	    - ensemble:
//	        - type: kernel_discriminant
//	          config: {kernel: linear}
//	        - type: kernel_discriminant
//	          config: {kernel: rbf, gamma: 0.5}
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// PipelineConfig is the pipeline block of a Config.
type PipelineConfig struct {
	Name    string        `yaml:"name"`
	Verbose int           `yaml:"verbose"`
	Stages  []EntryConfig `yaml:"stages"`
}

// EntryConfig declares one position: either a single stage (Type plus
// Config) or an Ensemble list, never both.
type EntryConfig struct {
	Type     string         `yaml:"type"`
	Config   map[string]any `yaml:"config"`
	Ensemble []StageConfig  `yaml:"ensemble"`
}

// StageConfig declares one ensemble member.
type StageConfig struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
}

// LoadConfig reads and parses a YAML pipeline declaration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML pipeline declaration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

// Build constructs the declared pipeline, using reg to instantiate each
// stage from its type name and parameter block.
func (c *Config) Build(reg *Registry) (*Pipeline, error) {
	entries := make([]Entry, 0, len(c.Pipeline.Stages))
	for i, ec := range c.Pipeline.Stages {
		switch {
		case ec.Type != "" && len(ec.Ensemble) > 0:
			return nil, errors.NewStructuralError("Config.Build", i,
				"entry declares both a stage type and an ensemble")
		case ec.Type != "":
			s, err := reg.Build(ec.Type, ec.Config)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
			entries = append(entries, One(s))
		case len(ec.Ensemble) > 0:
			members := make([]stage.Stage, len(ec.Ensemble))
			for j, sc := range ec.Ensemble {
				s, err := reg.Build(sc.Type, sc.Config)
				if err != nil {
					return nil, errors.Wrapf(err, "entry %d member %d", i, j)
				}
				members[j] = s
			}
			entries = append(entries, Group(members...))
		default:
			return nil, errors.NewStructuralError("Config.Build", i,
				"entry declares neither a stage type nor an ensemble")
		}
	}

	opts := make([]Option, 0, 2)
	if c.Pipeline.Name != "" {
		opts = append(opts, WithName(c.Pipeline.Name))
	}
	if c.Pipeline.Verbose > 0 {
		opts = append(opts, WithVerbose(c.Pipeline.Verbose))
	}
	return New(entries, opts...)
}
