package network

// Summary is a count-level view of a network.
type Summary struct {
	Nodes          int              `json:"nodes"`
	Segments       int              `json:"segments"`
	ByKind         map[NodeKind]int `json:"by_kind"`
	Supplied       int              `json:"supplied"`
	Dry            int              `json:"dry"`
	BurstSegments  int              `json:"burst_segments"`
	IsolatedValves int              `json:"isolated_segments"`
	Islands        int              `json:"islands"`
	UnfedIslands   int              `json:"unfed_islands"`
	Bridges        int              `json:"critical_segments"`
	Sensors        int              `json:"sensors"`
	Zones          int              `json:"zones"`
}

// Summarize reads Supplied flags as they are; call ComputeReachability first
// for a consistent view.
func Summarize(net Network) Summary {
	sum := Summary{
		Nodes:    len(net.Nodes),
		Segments: len(net.Segments),
		ByKind:   make(map[NodeKind]int, 4),
		Sensors:  len(net.Sensors),
		Zones:    len(net.Zones),
		Bridges:  len(Bridges(net)),
	}
	for _, n := range net.Nodes {
		sum.ByKind[n.Kind()]++
		if n.Supplied() {
			sum.Supplied++
		} else {
			sum.Dry++
		}
	}
	for _, s := range net.Segments {
		switch s.State {
		case StateBurst:
			sum.BurstSegments++
		case StateIsolated:
			sum.IsolatedValves++
		}
	}
	for _, island := range Islands(net) {
		sum.Islands++
		if !island.Fed {
			sum.UnfedIslands++
		}
	}
	return sum
}
