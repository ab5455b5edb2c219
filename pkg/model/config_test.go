package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSplitterConfig(t *testing.T) {
	cfg := DefaultSplitterConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultSplitterName, cfg.Name)
	require.Equal(t, 2, cfg.Factor)
	require.Zero(t, cfg.ProjectionSize)
}

func TestParseSplitterConfig(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		expected  SplitterConfig
		errString string
	}{
		{
			name:     "empty keeps defaults",
			yaml:     "",
			expected: DefaultSplitterConfig(),
		},
		{
			name: "full",
			yaml: "name: char_split\nfactor: 4\nprojection_size: 8\nprojection_activation: tanh\nseed: 42\n",
			expected: SplitterConfig{
				Name:                 "char_split",
				Factor:               4,
				ProjectionSize:       8,
				ProjectionActivation: "tanh",
				Seed:                 42,
			},
		},
		{
			name:     "partial",
			yaml:     "factor: 3\n",
			expected: SplitterConfig{Name: DefaultSplitterName, Factor: 3, Seed: 1},
		},
		{name: "unknown key", yaml: "factr: 3\n", errString: "field factr not found"},
		{name: "bad factor", yaml: "factor: 0\n", errString: "factor must be at least 1"},
		{name: "activation without projection", yaml: "projection_activation: relu\n", errString: "without projection_size"},
		{name: "bad activation", yaml: "projection_size: 4\nprojection_activation: swish\n", errString: "unknown activation"},
		{name: "not yaml", yaml: "factor: [\n", errString: "decoding splitter config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			cfg, err := ParseSplitterConfig([]byte(tt.yaml))
			if tt.errString != "" {
				r.ErrorIs(err, ErrConfiguration)
				r.ErrorContains(err, tt.errString)
				return
			}
			r.NoError(err)
			r.Equal(tt.expected, cfg)
		})
	}
}

func TestLoadSplitterConfig(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "splitter.yaml")
	r.NoError(os.WriteFile(path, []byte("factor: 5\n"), 0o600))

	cfg, err := LoadSplitterConfig(path)
	r.NoError(err)
	r.Equal(5, cfg.Factor)

	_, err = LoadSplitterConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	r.ErrorIs(err, os.ErrNotExist)
}
