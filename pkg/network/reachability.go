package network

// adjacency builds an undirected neighbor map over active segments.
// Segments with an unknown endpoint are skipped.
func adjacency(known map[string]bool, segments []Segment) map[string][]string {
	adj := make(map[string][]string, len(known))
	for _, s := range segments {
		if !s.Active() {
			continue
		}
		if !known[s.Source] || !known[s.Target] {
			continue
		}
		adj[s.Source] = append(adj[s.Source], s.Target)
		adj[s.Target] = append(adj[s.Target], s.Source)
	}
	return adj
}

// SuppliedSet returns the ids of nodes connected to any Source through
// segments that are neither Burst nor Isolated.
func SuppliedSet(nodes []Node, segments []Segment) map[string]bool {
	known := make(map[string]bool, len(nodes))
	var queue []string
	for _, n := range nodes {
		known[n.ID()] = true
		if n.Kind() == KindSource {
			queue = append(queue, n.ID())
		}
	}

	adj := adjacency(known, segments)

	// BFS traversal.
	visited := make(map[string]bool, len(nodes))
	for _, id := range queue {
		visited[id] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

// ComputeReachability returns a fresh node slice with Supplied recomputed.
// The inputs are not modified.
func ComputeReachability(nodes []Node, segments []Segment) []Node {
	supplied := SuppliedSet(nodes, segments)
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.withSupply(supplied[n.ID()])
	}
	return out
}

// WithReachability returns net with node supply recomputed.
func WithReachability(net Network) Network {
	out := net.Clone()
	out.Nodes = ComputeReachability(net.Nodes, net.Segments)
	return out
}
