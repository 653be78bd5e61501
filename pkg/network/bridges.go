package network

import "sort"

type halfEdge struct {
	to      int
	segment int
}

type bridgeFrame struct {
	node       int
	viaSegment int
	edgeIndex  int
	child      int
	returning  bool
}

// Bridges returns, in network order, the ids of active segments whose loss
// disconnects part of the network. Only these segments can leave nodes dry.
// Parallel pipes between the same pair of nodes are not bridges.
//
// Complexity: O(V + E), iterative DFS.
func Bridges(net Network) []string {
	ix := NewIndex(net)
	adj := make([][]halfEdge, len(net.Nodes))
	for i, s := range net.Segments {
		if !s.Active() {
			continue
		}
		a, okA := ix.Node(s.Source)
		b, okB := ix.Node(s.Target)
		if !okA || !okB || a == b {
			continue
		}
		adj[a] = append(adj[a], halfEdge{to: b, segment: i})
		adj[b] = append(adj[b], halfEdge{to: a, segment: i})
	}

	discovery := make([]int, len(net.Nodes))
	low := make([]int, len(net.Nodes))
	for i := range discovery {
		discovery[i] = -1
	}
	timer := 0
	var bridges []int

	for start := range net.Nodes {
		if discovery[start] >= 0 {
			continue
		}
		stack := []bridgeFrame{{node: start, viaSegment: -1}}
		discovery[start], low[start] = timer, timer
		timer++

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]

			if frame.returning {
				frame.returning = false
				if low[frame.child] < low[frame.node] {
					low[frame.node] = low[frame.child]
				}
				if low[frame.child] > discovery[frame.node] {
					bridges = append(bridges, adj[frame.node][frame.edgeIndex-1].segment)
				}
			}

			if frame.edgeIndex == len(adj[frame.node]) {
				stack = stack[:len(stack)-1]
				continue
			}

			e := adj[frame.node][frame.edgeIndex]
			frame.edgeIndex++
			// Skip the tree edge back to the parent, but not a parallel pipe.
			if e.segment == frame.viaSegment {
				continue
			}

			if discovery[e.to] < 0 {
				discovery[e.to], low[e.to] = timer, timer
				timer++
				frame.child = e.to
				frame.returning = true
				stack = append(stack, bridgeFrame{node: e.to, viaSegment: e.segment})
				continue
			}
			if discovery[e.to] < low[frame.node] {
				low[frame.node] = discovery[e.to]
			}
		}
	}

	sort.Ints(bridges)
	ids := make([]string, len(bridges))
	for i, seg := range bridges {
		ids[i] = net.Segments[seg].ID
	}
	return ids
}
