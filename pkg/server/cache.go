package server

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

type buildFunc func(ctx context.Context, seed uint64) (network.Network, error)

// baselineCache keeps the most recently built networks by seed. Concurrent
// misses for one seed share a single build. Cached networks are never
// modified; every operation on them returns a new network.
type baselineCache struct {
	mu    sync.Mutex
	size  int
	nets  map[uint64]network.Network
	order []uint64 // oldest first
	group singleflight.Group
	build buildFunc
}

func newBaselineCache(size int, build buildFunc) *baselineCache {
	if size < 1 {
		size = 1
	}
	return &baselineCache{
		size:  size,
		nets:  make(map[uint64]network.Network, size),
		build: build,
	}
}

func (c *baselineCache) Get(ctx context.Context, seed uint64) (network.Network, error) {
	c.mu.Lock()
	if net, ok := c.nets[seed]; ok {
		c.mu.Unlock()
		return net, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(strconv.FormatUint(seed, 10), func() (any, error) {
		net, err := c.build(ctx, seed)
		if err != nil {
			return nil, err
		}
		c.put(seed, net)
		return net, nil
	})
	if err != nil {
		return network.Network{}, err
	}
	return v.(network.Network), nil
}

func (c *baselineCache) put(seed uint64, net network.Network) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nets[seed]; ok {
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.nets, oldest)
	}
	c.nets[seed] = net
	c.order = append(c.order, seed)
}

func (c *baselineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nets)
}
