package network

import "fmt"

// FailureReport is the outcome of bursting one segment.
type FailureReport struct {
	// Network carries the burst segment and recomputed supply.
	Network Network
	Segment Segment
	// DryNodes lists, in network order, the nodes this failure cut off.
	DryNodes []string
	// PreExisting lists nodes that were already unsupplied before the failure.
	PreExisting     []string
	Impact          Impact
	Recommendations []Recommendation
}

// Simulator injects failures and scores them with its Analyzer.
type Simulator struct {
	Analyzer Analyzer
}

// DefaultSimulator scores with DefaultAnalyzer.
var DefaultSimulator = Simulator{Analyzer: DefaultAnalyzer}

// SimulateFailure bursts segmentID using DefaultSimulator.
func SimulateFailure(net Network, segmentID string) (*FailureReport, error) {
	return DefaultSimulator.SimulateFailure(net, segmentID)
}

// SimulateFailure bursts segmentID and reports the nodes it leaves dry.
// Supply before the failure is recomputed from the input segment states,
// so stale Supplied flags on the input never leak into the dry set.
// net is never modified.
func (s Simulator) SimulateFailure(net Network, segmentID string) (*FailureReport, error) {
	segments, idx, err := withState(net.Segments, segmentID, StateBurst)
	if err != nil {
		return nil, err
	}

	before := SuppliedSet(net.Nodes, net.Segments)
	after := ComputeReachability(net.Nodes, segments)

	var (
		dry         []Node
		dryIDs      []string
		preExisting []string
	)
	for _, n := range after {
		switch {
		case !before[n.ID()]:
			preExisting = append(preExisting, n.ID())
		case !n.Supplied():
			dry = append(dry, n)
			dryIDs = append(dryIDs, n.ID())
		}
	}

	out := net.Clone()
	out.Nodes = after
	out.Segments = segments

	return &FailureReport{
		Network:         out,
		Segment:         segments[idx],
		DryNodes:        dryIDs,
		PreExisting:     preExisting,
		Impact:          s.Analyzer.DeriveImpact(dry),
		Recommendations: s.Analyzer.DeriveRecommendations(segments[idx], dry),
	}, nil
}

// IsolateSegment closes the valves around segmentID and recomputes supply.
func IsolateSegment(net Network, segmentID string) (Network, error) {
	return setSegmentState(net, segmentID, StateIsolated)
}

// RestoreSegment returns segmentID to Normal and recomputes supply.
func RestoreSegment(net Network, segmentID string) (Network, error) {
	return setSegmentState(net, segmentID, StateNormal)
}

func setSegmentState(net Network, segmentID string, state SegmentState) (Network, error) {
	segments, _, err := withState(net.Segments, segmentID, state)
	if err != nil {
		return Network{}, err
	}
	out := net.Clone()
	out.Segments = segments
	out.Nodes = ComputeReachability(net.Nodes, segments)
	return out, nil
}

// withState copies segments with segmentID set to state.
func withState(segments []Segment, segmentID string, state SegmentState) ([]Segment, int, error) {
	idx := -1
	for i, s := range segments {
		if s.ID == segmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, -1, fmt.Errorf("segment %q: %w", segmentID, ErrNotFound)
	}

	out := make([]Segment, len(segments))
	copy(out, segments)
	out[idx].State = state
	return out, idx, nil
}
