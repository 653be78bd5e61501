package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/engine/report"
	"github.com/DrSkyle/aquagrid/pkg/feeds"
	"github.com/DrSkyle/aquagrid/pkg/network"
)

// run executes the root command with flags reset to their defaults.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	jsonOut = false
	isolateIDs = nil
	networkFile = ""
	scenarioFile = ""
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), SimulateCmd.Flags(), SweepCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Value.Type() == "stringSlice" {
				return
			}
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFeedsCommand(t *testing.T) {
	out, err := run(t, "feeds", "tips")
	require.NoError(t, err)

	var tips []feeds.Tip
	require.NoError(t, json.Unmarshal([]byte(out), &tips))
	assert.Len(t, tips, 3)

	_, err = run(t, "feeds", "weather")
	assert.Error(t, err)
}

func TestNetworkCommandExports(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "network", "--json", "--seed", "3", "--out", dir)
	require.NoError(t, err)

	var doc struct {
		Seed    uint64          `json:"seed"`
		Summary network.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, uint64(3), doc.Seed)
	assert.Equal(t, 26, doc.Summary.Supplied)

	assert.FileExists(t, filepath.Join(dir, "network.json"))
	assert.FileExists(t, filepath.Join(dir, "inventory.json"))
}

func TestSimulateCommandScenario(t *testing.T) {
	file := filepath.Join(t.TempDir(), "split.hcl")
	require.NoError(t, os.WriteFile(file, []byte(`
name    = "split"
isolate = ["PIPE-LOOP-0", "PIPE-LOOP-${loop_size - 1}"]

failure "PIPE-FEEDER-0" {}
`), 0o644))

	out, err := run(t, "simulate", "--json", "--scenario", file)
	require.NoError(t, err)

	var o engine.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Equal(t, []string{"J-0"}, o.DryNodes)

	_, err = run(t, "simulate")
	assert.ErrorContains(t, err, "SEGMENT_ID")
}

func TestRenderers(t *testing.T) {
	net, err := network.Build()
	require.NoError(t, err)
	net = network.WithReachability(net)

	var buf bytes.Buffer
	renderSummary(&buf, 1, network.Summarize(net))
	assert.Contains(t, buf.String(), "Critical segments")

	r, err := network.SimulateFailure(net, "PIPE-BRANCH-5")
	require.NoError(t, err)
	buf.Reset()
	renderOutcome(&buf, &engine.Outcome{Segment: r.Segment, DryNodes: r.DryNodes, Impact: r.Impact, Recommendations: r.Recommendations})
	assert.Contains(t, buf.String(), "Bypass Required")

	buf.Reset()
	renderSweep(&buf, []report.SweepEntry{{Rank: 1, SegmentID: "PIPE-BRANCH-5", Population: 135}})
	assert.True(t, strings.Contains(buf.String(), "PIPE-BRANCH-5"))
}
