package network

// UnionFind is a disjoint-set forest with path compression and union by rank.
// It is not safe for concurrent use; each operation builds its own.
type UnionFind struct {
	parent []int
	rank   []int
}

func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{parent: parent, rank: make([]int, n)}
}

// Find returns the set representative, or -1 for an out-of-range element.
func (uf *UnionFind) Find(i int) int {
	if i < 0 || i >= len(uf.parent) {
		return -1
	}
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		uf.parent[i], i = root, uf.parent[i]
	}
	return root
}

func (uf *UnionFind) Union(i, j int) {
	rootI, rootJ := uf.Find(i), uf.Find(j)
	if rootI == -1 || rootJ == -1 || rootI == rootJ {
		return
	}

	// Union by rank
	switch {
	case uf.rank[rootI] < uf.rank[rootJ]:
		uf.parent[rootI] = rootJ
	case uf.rank[rootI] > uf.rank[rootJ]:
		uf.parent[rootJ] = rootI
	default:
		uf.parent[rootJ] = rootI
		uf.rank[rootI]++
	}
}

func (uf *UnionFind) Connected(i, j int) bool {
	return uf.Find(i) == uf.Find(j)
}

// Island is a maximal group of nodes joined by active segments.
type Island struct {
	Nodes []string `json:"nodes"`
	// Fed reports whether the island contains a Source.
	Fed bool `json:"fed"`
}

// Islands partitions the network by active connectivity. Islands appear in
// the order of their first node; members keep network order.
func Islands(net Network) []Island {
	ix := NewIndex(net)
	uf := NewUnionFind(len(net.Nodes))
	for _, s := range net.Segments {
		if !s.Active() {
			continue
		}
		a, okA := ix.Node(s.Source)
		b, okB := ix.Node(s.Target)
		if okA && okB {
			uf.Union(a, b)
		}
	}

	var islands []Island
	byRoot := make(map[int]int)
	for i, n := range net.Nodes {
		root := uf.Find(i)
		pos, ok := byRoot[root]
		if !ok {
			pos = len(islands)
			byRoot[root] = pos
			islands = append(islands, Island{})
		}
		islands[pos].Nodes = append(islands[pos].Nodes, n.ID())
		if n.Kind() == KindSource {
			islands[pos].Fed = true
		}
	}
	return islands
}
