package network

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	origin := Coordinate{}
	base := func() Network {
		return Network{
			Nodes: []Node{
				NewSource("S", origin, "P"),
				NewJunction("J", origin, 0),
			},
			Segments: []Segment{seg("x", "S", "J", StateNormal)},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Network)
		ok     bool
	}{
		{"valid", func(*Network) {}, true},
		{"duplicate node", func(n *Network) {
			n.Nodes = append(n.Nodes, NewDemand("J", origin, "D"))
		}, false},
		{"empty node id", func(n *Network) {
			n.Nodes = append(n.Nodes, NewDemand("", origin, "D"))
		}, false},
		{"duplicate segment", func(n *Network) {
			n.Segments = append(n.Segments, seg("x", "J", "S", StateNormal))
		}, false},
		{"missing target", func(n *Network) {
			n.Segments[0].Target = "ghost"
		}, false},
		{"missing source", func(n *Network) {
			n.Segments[0].Source = "ghost"
		}, false},
		{"priority out of range", func(n *Network) {
			n.Segments[0].PriorityScore = 100
		}, false},
		{"unknown state", func(n *Network) {
			n.Segments[0].State = "Leaking"
		}, false},
		{"sensor on unknown node", func(n *Network) {
			n.Sensors = []Sensor{{ID: "SENSOR-0", NodeID: "ghost"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := base()
			tt.mutate(&net)
			err := Validate(net)
			if tt.ok && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("Expected ErrInvalidTopology, got %v", err)
			}
		})
	}
}

func TestNetworkJSONRoundTrip(t *testing.T) {
	net, err := Build(WithSeed(9), WithSensorProbability(1))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	report, err := SimulateFailure(net, "PIPE-BRANCH-5")
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	data, err := json.Marshal(report.Network)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Network
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(report.Network, decoded) {
		t.Error("Decoded network differs from the original")
	}
}

func TestNetworkJSONRejectsBadTopology(t *testing.T) {
	tests := map[string]string{
		"unknown kind": `{"nodes":[{"id":"X","kind":"Reservoir"}],"segments":[]}`,
		"dangling segment": `{"nodes":[{"id":"S","kind":"Source"}],
			"segments":[{"id":"p","source":"S","target":"nowhere","state":"Normal"}]}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			keep := Network{Zones: []ReplacementZone{{ID: "ZONE-A"}}}
			err := json.Unmarshal([]byte(doc), &keep)
			if !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("Expected ErrInvalidTopology, got %v", err)
			}
			if len(keep.Zones) != 1 {
				t.Error("Target should be untouched on error")
			}
		})
	}
}

func TestNodeRecordKinds(t *testing.T) {
	j := NewJunction("J-2", Coordinate{Lat: 1, Lng: 2}, 2)
	j.Valve = ValveClosed
	nodes := []Node{
		NewSource("WTP", Coordinate{}, "North"),
		j,
		NewDistribution("DIST-1", Coordinate{}, "J-1"),
		NewDemand("HOUSE-1-0", Coordinate{}, "DIST-1").withSupply(false),
	}

	for _, n := range nodes {
		back, err := RecordOf(n).Node()
		if err != nil {
			t.Fatalf("%s: %v", n.ID(), err)
		}
		if !reflect.DeepEqual(n, back) {
			t.Errorf("%s: expected %+v, got %+v", n.ID(), n, back)
		}
	}
}
