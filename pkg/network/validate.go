package network

import "fmt"

// Validate rejects duplicate ids, segments with a missing endpoint and
// priority scores outside [0,100).
func Validate(net Network) error {
	nodes := make(map[string]bool, len(net.Nodes))
	for _, n := range net.Nodes {
		if n.ID() == "" {
			return fmt.Errorf("node with empty id: %w", ErrInvalidTopology)
		}
		if nodes[n.ID()] {
			return fmt.Errorf("duplicate node %q: %w", n.ID(), ErrInvalidTopology)
		}
		nodes[n.ID()] = true
	}

	segments := make(map[string]bool, len(net.Segments))
	for _, s := range net.Segments {
		if segments[s.ID] {
			return fmt.Errorf("duplicate segment %q: %w", s.ID, ErrInvalidTopology)
		}
		segments[s.ID] = true

		if !nodes[s.Source] {
			return fmt.Errorf("segment %q references unknown source %q: %w", s.ID, s.Source, ErrInvalidTopology)
		}
		if !nodes[s.Target] {
			return fmt.Errorf("segment %q references unknown target %q: %w", s.ID, s.Target, ErrInvalidTopology)
		}
		if s.PriorityScore < 0 || s.PriorityScore >= 100 {
			return fmt.Errorf("segment %q priority %d out of range: %w", s.ID, s.PriorityScore, ErrInvalidTopology)
		}
		switch s.State {
		case StateNormal, StateBurst, StateIsolated:
		default:
			return fmt.Errorf("segment %q has unknown state %q: %w", s.ID, s.State, ErrInvalidTopology)
		}
	}

	for _, sensor := range net.Sensors {
		if sensor.NodeID != "" && !nodes[sensor.NodeID] {
			return fmt.Errorf("sensor %q references unknown node %q: %w", sensor.ID, sensor.NodeID, ErrInvalidTopology)
		}
	}
	return nil
}
