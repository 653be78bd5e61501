package network

import (
	"encoding/json"
	"fmt"
)

// NodeRecord is the flat wire form of a Node. Kind selects which of the
// optional fields apply.
type NodeRecord struct {
	ID           string      `json:"id"`
	Kind         NodeKind    `json:"kind"`
	Position     Coordinate  `json:"position"`
	Supplied     bool        `json:"supplied"`
	Plant        string      `json:"plant,omitempty"`
	LoopIndex    *int        `json:"loop_index,omitempty"`
	Valve        ValveStatus `json:"valve,omitempty"`
	Junction     string      `json:"junction,omitempty"`
	Distribution string      `json:"distribution,omitempty"`
}

// RecordOf flattens n.
func RecordOf(n Node) NodeRecord {
	rec := NodeRecord{ID: n.ID(), Kind: n.Kind(), Position: n.Position(), Supplied: n.Supplied()}
	switch v := n.(type) {
	case Source:
		rec.Plant = v.Plant
	case Junction:
		idx := v.LoopIndex
		rec.LoopIndex = &idx
		rec.Valve = v.Valve
	case Distribution:
		rec.Junction = v.Junction
	case Demand:
		rec.Distribution = v.Distribution
	}
	return rec
}

// Node rebuilds the variant named by Kind.
func (r NodeRecord) Node() (Node, error) {
	var n Node
	switch r.Kind {
	case KindSource:
		n = NewSource(r.ID, r.Position, r.Plant)
	case KindJunction:
		j := NewJunction(r.ID, r.Position, 0)
		if r.LoopIndex != nil {
			j.LoopIndex = *r.LoopIndex
		}
		if r.Valve != "" {
			j.Valve = r.Valve
		}
		n = j
	case KindDistribution:
		n = NewDistribution(r.ID, r.Position, r.Junction)
	case KindDemand:
		n = NewDemand(r.ID, r.Position, r.Distribution)
	default:
		return nil, fmt.Errorf("node %q has unknown kind %q: %w", r.ID, r.Kind, ErrInvalidTopology)
	}
	return n.withSupply(r.Supplied), nil
}

type networkJSON struct {
	Nodes    []NodeRecord      `json:"nodes"`
	Segments []Segment         `json:"segments"`
	Sensors  []Sensor          `json:"sensors"`
	Zones    []ReplacementZone `json:"zones"`
}

func (n Network) MarshalJSON() ([]byte, error) {
	doc := networkJSON{
		Nodes:    make([]NodeRecord, len(n.Nodes)),
		Segments: n.Segments,
		Sensors:  n.Sensors,
		Zones:    n.Zones,
	}
	for i, node := range n.Nodes {
		doc.Nodes[i] = RecordOf(node)
	}
	if doc.Segments == nil {
		doc.Segments = []Segment{}
	}
	if doc.Sensors == nil {
		doc.Sensors = []Sensor{}
	}
	if doc.Zones == nil {
		doc.Zones = []ReplacementZone{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes and validates a network. n is left untouched on error.
func (n *Network) UnmarshalJSON(data []byte) error {
	var doc networkJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := Network{
		Nodes:    make([]Node, 0, len(doc.Nodes)),
		Segments: doc.Segments,
		Sensors:  doc.Sensors,
		Zones:    doc.Zones,
	}
	for _, rec := range doc.Nodes {
		node, err := rec.Node()
		if err != nil {
			return err
		}
		out.Nodes = append(out.Nodes, node)
	}
	if err := Validate(out); err != nil {
		return err
	}
	*n = out
	return nil
}
