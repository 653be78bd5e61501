package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

func fixture() network.Network {
	at := network.Coordinate{}
	segment := func(id, src, dst string, class network.SegmentClass, material string, diameter, year, psi, priority int) network.Segment {
		return network.Segment{
			ID: id, Source: src, Target: dst, Class: class, Material: material,
			Diameter: diameter, InstalledYear: year, RatedPressure: psi, PriorityScore: priority,
			ReplacementStatus: "Pending", State: network.StateNormal, Confirmation: network.Confirmed,
		}
	}

	net := network.Network{
		Nodes: []network.Node{
			network.NewSource("S", at, "North"),
			network.NewJunction("J-0", at, 0),
			network.NewJunction("J-1", at, 1),
			network.NewDistribution("D", at, "J-1"),
			network.NewDemand("H", at, "D"),
		},
		Segments: []network.Segment{
			segment("PIPE-FEEDER-0", "S", "J-0", network.ClassFeeder, "Ductile Iron", 800, 1995, 90, 40),
			segment("PIPE-LOOP-0", "J-0", "J-1", network.ClassLoop, "Steel", 500, 1990, 80, 75),
			segment("PIPE-LOOP-1", "J-1", "J-0", network.ClassLoop, "Steel", 500, 1988, 80, 75),
			segment("PIPE-BRANCH-1", "J-1", "D", network.ClassBranch, "PVC", 200, 2004, 50, 12),
			segment("PIPE-SUB-1-0", "D", "H", network.ClassSubBranch, "PVC", 100, 2010, 45, 90),
		},
	}
	net.Segments[2].Confirmation = network.Probabilistic
	net.Segments[3].State = network.StateBurst
	return net
}

func TestInventoryOrderAndCriticality(t *testing.T) {
	items := Inventory(fixture())

	want := []string{"PIPE-SUB-1-0", "PIPE-LOOP-0", "PIPE-LOOP-1", "PIPE-FEEDER-0", "PIPE-BRANCH-1"}
	for i, id := range want {
		if items[i].SegmentID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, items[i].SegmentID)
		}
	}

	critical := map[string]bool{}
	for _, item := range items {
		critical[item.SegmentID] = item.Critical
	}
	if !critical["PIPE-FEEDER-0"] || !critical["PIPE-SUB-1-0"] {
		t.Error("Single-path segments should be critical")
	}
	if critical["PIPE-LOOP-0"] || critical["PIPE-BRANCH-1"] {
		t.Error("Parallel and burst segments should not be critical")
	}
}

func TestWriteInventoryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventoryCSV(&buf, fixture()); err != nil {
		t.Fatalf("WriteInventoryCSV failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "inventory_csv", buf.Bytes())
}

func TestWriteInventoryJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Inventory(fixture())[:2]); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "inventory_json", buf.Bytes())
}

func TestWriteSweepCSV(t *testing.T) {
	entries := []SweepEntry{
		{Rank: 1, SegmentID: "PIPE-BRANCH-1", Class: "branch", Priority: 12, Critical: true, Affected: 4, DryDemand: 3, Population: 135},
		{Rank: 2, SegmentID: "PIPE-LOOP-0", Class: "loop", Priority: 75},
	}

	var buf bytes.Buffer
	if err := WriteSweepCSV(&buf, entries); err != nil {
		t.Fatalf("WriteSweepCSV failed: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, "sweep_csv", buf.Bytes())
}
