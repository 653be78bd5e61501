//go:build e2e

package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkExport(t *testing.T) {
	out := t.TempDir()

	stdout, stderr, err := runCLI(t, cleanEnv(t), "network", "--out", out, "--format", "csv")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "26")

	_, err = os.Stat(filepath.Join(out, "network.json"))
	assert.NoError(t, err)

	inv, err := os.ReadFile(filepath.Join(out, "inventory.csv"))
	require.NoError(t, err)
	assert.Equal(t, 27, strings.Count(string(inv), "\n"))
}

func TestSimulateJSON(t *testing.T) {
	stdout, stderr, err := runCLI(t, cleanEnv(t), "simulate", "PIPE-BRANCH-1", "--json")
	require.NoError(t, err, stderr)

	var outcome struct {
		RunID    string   `json:"run_id"`
		DryNodes []string `json:"dry_nodes"`
		Impact   struct {
			EstimatedPopulation int `json:"estimated_population"`
		} `json:"impact"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &outcome))
	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, []string{"DIST-1", "HOUSE-1-0", "HOUSE-1-1", "HOUSE-1-2"}, outcome.DryNodes)
	assert.Equal(t, 135, outcome.Impact.EstimatedPopulation)
}

func TestSimulateUnknownSegment(t *testing.T) {
	_, stderr, err := runCLI(t, cleanEnv(t), "simulate", "PIPE-NOPE")
	assert.Error(t, err)
	assert.Contains(t, stderr, "PIPE-NOPE")
}

func TestSweepEnvConfig(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := runCLI(t, cleanEnv(t, "AQUAGRID_OUTPUT_DIR="+out, "AQUAGRID_OUTPUT_FORMAT=csv"), "sweep", "--top", "4")
	require.NoError(t, err, stderr)

	data, err := os.ReadFile(filepath.Join(out, "sweep.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines[1:] {
		assert.Contains(t, l, "PIPE-BRANCH-")
	}
}
