package model

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// DefaultSplitterName is the part name a SequenceSplitter registers under
// when none is configured.
const DefaultSplitterName = "sequence_split"

// SplitterConfig holds the hyperparameters of a SequenceSplitter.
type SplitterConfig struct {
	// Name is the part name; unique within a graph.
	Name string `yaml:"name"`

	// Factor is how many timesteps every input timestep becomes.
	Factor int `yaml:"factor"`

	// ProjectionSize, when positive, projects the states to this many
	// features before splitting.
	ProjectionSize int `yaml:"projection_size"`

	// ProjectionActivation names the activation applied after the
	// projection (see tensor.ActivationNames). Empty means identity.
	ProjectionActivation string `yaml:"projection_activation"`

	// Seed drives the projection initializer.
	Seed int64 `yaml:"seed"`
}

// DefaultSplitterConfig returns a splitter that doubles sequence length
// without a projection.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		Name:   DefaultSplitterName,
		Factor: 2,
		Seed:   1,
	}
}

// Validate checks the values that do not depend on the parent.
func (c SplitterConfig) Validate() error {
	if c.Name == "" {
		return errors.Wrap(ErrConfiguration, "name must not be empty")
	}
	if c.Factor < 1 {
		return errors.Wrapf(ErrConfiguration, "factor must be at least 1, got %d", c.Factor)
	}
	if c.ProjectionSize < 0 {
		return errors.Wrapf(ErrConfiguration, "projection_size must not be negative, got %d", c.ProjectionSize)
	}
	if c.ProjectionActivation != "" && c.ProjectionSize == 0 {
		return errors.Wrapf(ErrConfiguration, "projection_activation %q set without projection_size",
			c.ProjectionActivation)
	}
	if _, err := tensor.ActivationByName(c.ProjectionActivation); err != nil {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	return nil
}

// LoadSplitterConfig reads a YAML splitter configuration. Fields missing
// from the file keep their DefaultSplitterConfig values.
func LoadSplitterConfig(path string) (SplitterConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SplitterConfig{}, errors.Wrapf(err, "reading splitter config %s", path)
	}
	return ParseSplitterConfig(b)
}

// ParseSplitterConfig decodes a YAML splitter configuration over the
// defaults and validates the result. Unknown keys are rejected.
func ParseSplitterConfig(b []byte) (SplitterConfig, error) {
	cfg := DefaultSplitterConfig()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return SplitterConfig{}, errors.Wrapf(ErrConfiguration, "decoding splitter config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return SplitterConfig{}, err
	}
	return cfg, nil
}
