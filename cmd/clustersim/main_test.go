package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/internal/clustersim"
)

func TestRun(t *testing.T) {
	t.Setenv("CLUSTERSIM_OTEL_ENDPOINT", "")

	db := filepath.Join(t.TempDir(), "runs.db")

	tcs := map[string]struct {
		args       []string
		wantErr    error
		wantOut    string
		wantStderr string
	}{
		"help": {
			args:       []string{"-h"},
			wantStderr: "-seed",
		},
		"invalid flag": {
			args:    []string{"-runs", "0"},
			wantErr: clustersim.ErrInvalidFlag,
		},
		"empty catalog": {
			args:    []string{"-db", db, "-list", "5"},
			wantOut: "# run",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			err := run(tc.args, &stdout, &stderr)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, stdout.String(), tc.wantOut)
			assert.Contains(t, stderr.String(), tc.wantStderr)
		})
	}

	var stdout, stderr bytes.Buffer

	require.Error(t, run([]string{"-unknown"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "flag provided but not defined")
}
