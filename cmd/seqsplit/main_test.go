package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celestialized/neuralmonkey/pkg/model"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunDefaults(t *testing.T) {
	r := require.New(t)
	out, _, err := execute(t)
	r.NoError(err)
	r.Contains(out, "states: [2 3 4]")
	r.Contains(out, "states: [2 6 2]")
	r.Contains(out, "dependencies: encoder, sequence_split")
	r.Contains(out, "feed encoder/mask [2 3]")
	r.Contains(out, "feed encoder/states [2 3 4]")
	r.NotContains(out, "variable")
}

func TestRunProjection(t *testing.T) {
	r := require.New(t)
	out, stderr, err := execute(t, "--dim", "6", "--factor", "3", "--projection-size", "6", "--activation", "tanh", "-v")
	r.NoError(err)
	r.Contains(out, "states: [2 9 2]")
	r.Contains(out, "variable sequence_split/projection/kernel [6 6]")
	r.Contains(stderr, "built sequence splitter")
}

func TestRunIndivisible(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "dimension", args: []string{"--dim", "5", "--factor", "2"}},
		{name: "dimension with projection", args: []string{"--dim", "5", "--factor", "2", "--projection-size", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "split.yaml")
	r.NoError(os.WriteFile(path, []byte("name: char_split\nfactor: 4\n"), 0o600))

	out, _, err := execute(t, "--config", path, "--dim", "8")
	r.NoError(err)
	r.Contains(out, "states: [2 12 2]")
	r.Contains(out, "dependencies: char_split, encoder")

	// An explicit flag wins over the file.
	out, _, err = execute(t, "--config", path, "--dim", "8", "--factor", "2")
	r.NoError(err)
	r.Contains(out, "states: [2 6 4]")
}
