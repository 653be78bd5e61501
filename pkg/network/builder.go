package network

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Builder defaults. Distances are in degrees.
const (
	DefaultLoopSize          = 8
	DefaultRadius            = 0.015
	DefaultBranchLength      = 0.008
	DefaultJitter            = 0.004
	DefaultZoneRadius        = 0.005
	DefaultSensorProbability = 0.30
	DefaultSeed              = 1

	sourceRadiusFactor = 1.5
	demandsPerBranch   = 3
	pcgStream          = 0x9e3779b97f4a7c15
)

// DefaultCenter is the reference city center (Kolkata).
var DefaultCenter = Coordinate{Lat: 22.5726, Lng: 88.3639}

// defaultDirection replaces a radial vector that cannot be normalized.
var defaultDirection = Coordinate{Lat: 1, Lng: 0}

type segmentSpec struct {
	class    SegmentClass
	material string
	diameter int
	pressure int
	yearFrom int
	yearSpan int
}

var (
	loopSpec   = segmentSpec{ClassLoop, "Steel", 500, 80, 1985, 30}
	feederSpec = segmentSpec{ClassFeeder, "Ductile Iron", 800, 90, 1990, 30}
	branchSpec = segmentSpec{ClassBranch, "PVC", 200, 50, 2000, 20}
	subSpec    = segmentSpec{ClassSubBranch, "PVC", 100, 45, 2005, 15}
)

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	seed              uint64
	rng               *rand.Rand
	loopSize          int
	radius            float64
	center            Coordinate
	branchLength      float64
	jitter            float64
	zoneRadius        float64
	sensorProbability float64

	net       Network
	positions map[string]Coordinate
}

func WithSeed(seed uint64) BuildOption {
	return func(b *builder) { b.seed = seed }
}

// WithRand routes every random draw through r. It overrides WithSeed.
func WithRand(r *rand.Rand) BuildOption {
	return func(b *builder) { b.rng = r }
}

func WithLoopSize(n int) BuildOption {
	return func(b *builder) { b.loopSize = n }
}

func WithRadius(r float64) BuildOption {
	return func(b *builder) { b.radius = r }
}

func WithCenter(c Coordinate) BuildOption {
	return func(b *builder) { b.center = c }
}

func WithBranchLength(l float64) BuildOption {
	return func(b *builder) { b.branchLength = l }
}

func WithJitter(j float64) BuildOption {
	return func(b *builder) { b.jitter = j }
}

func WithZoneRadius(r float64) BuildOption {
	return func(b *builder) { b.zoneRadius = r }
}

func WithSensorProbability(p float64) BuildOption {
	return func(b *builder) { b.sensorProbability = p }
}

// NewRand returns the generator Build uses for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^pcgStream))
}

// Build generates a synthetic network: a backbone loop, two treatment plants,
// distribution branches on odd junctions, sensors and one replacement zone.
// The same options always produce the same network.
func Build(opts ...BuildOption) (Network, error) {
	b := &builder{
		seed:              DefaultSeed,
		loopSize:          DefaultLoopSize,
		radius:            DefaultRadius,
		center:            DefaultCenter,
		branchLength:      DefaultBranchLength,
		jitter:            DefaultJitter,
		zoneRadius:        DefaultZoneRadius,
		sensorProbability: DefaultSensorProbability,
		positions:         make(map[string]Coordinate),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = NewRand(b.seed)
	}

	if b.loopSize < 3 {
		return Network{}, fmt.Errorf("loop needs at least 3 junctions, got %d: %w", b.loopSize, ErrInvalidTopology)
	}

	loop := b.buildLoop()
	b.buildSources(loop)
	b.buildBranches(loop)
	b.buildSensors()
	b.buildZone(loop[0])

	return b.net, nil
}

func (b *builder) addNode(n Node) {
	b.net.Nodes = append(b.net.Nodes, n)
	b.positions[n.ID()] = n.Position()
}

func (b *builder) addSegment(id, source, target string, spec segmentSpec) {
	b.net.Segments = append(b.net.Segments, Segment{
		ID:                id,
		Source:            source,
		Target:            target,
		Geometry:          [2]Coordinate{b.positions[source], b.positions[target]},
		Class:             spec.class,
		Material:          spec.material,
		Diameter:          spec.diameter,
		InstalledYear:     spec.yearFrom + b.rng.IntN(spec.yearSpan),
		RatedPressure:     spec.pressure,
		PriorityScore:     b.rng.IntN(100),
		ReplacementStatus: "Pending",
		State:             StateNormal,
		Confirmation:      Confirmed,
	})
}

func (b *builder) buildLoop() []Junction {
	loop := make([]Junction, b.loopSize)
	for i := range loop {
		angle := float64(i) / float64(b.loopSize) * 2 * math.Pi
		loop[i] = NewJunction(fmt.Sprintf("J-%d", i), onCircle(b.center, b.radius, angle), i)
		b.addNode(loop[i])
	}
	for i := range loop {
		next := loop[(i+1)%len(loop)]
		b.addSegment(fmt.Sprintf("PIPE-LOOP-%d", i), loop[i].ID(), next.ID(), loopSpec)
	}
	return loop
}

func (b *builder) buildSources(loop []Junction) {
	plants := []struct {
		id, plant string
		angle     float64
		target    int
	}{
		{"WTP-North", "North", 0, 0},
		{"WTP-South", "South", math.Pi, len(loop) / 2},
	}
	for k, p := range plants {
		pos := onCircle(b.center, b.radius*sourceRadiusFactor, p.angle)
		b.addNode(NewSource(p.id, pos, p.plant))
		b.addSegment(fmt.Sprintf("PIPE-FEEDER-%d", k), p.id, loop[p.target].ID(), feederSpec)
	}
}

func (b *builder) buildBranches(loop []Junction) {
	for i, j := range loop {
		if i%2 == 0 {
			continue
		}
		dir, err := unit(j.Position().Sub(b.center))
		if errors.Is(err, ErrDegenerateGeometry) {
			dir = defaultDirection
		}

		dist := NewDistribution(fmt.Sprintf("DIST-%d", i), j.Position().Offset(dir.Lat*b.branchLength, dir.Lng*b.branchLength), j.ID())
		b.addNode(dist)
		b.addSegment(fmt.Sprintf("PIPE-BRANCH-%d", i), j.ID(), dist.ID(), branchSpec)

		for k := 0; k < demandsPerBranch; k++ {
			pos := dist.Position().Offset((b.rng.Float64()-0.5)*b.jitter, (b.rng.Float64()-0.5)*b.jitter)
			house := NewDemand(fmt.Sprintf("HOUSE-%d-%d", i, k), pos, dist.ID())
			b.addNode(house)
			b.addSegment(fmt.Sprintf("PIPE-SUB-%d-%d", i, k), dist.ID(), house.ID(), subSpec)
		}
	}
}

func (b *builder) buildSensors() {
	for i, n := range b.net.Nodes {
		if b.rng.Float64() >= b.sensorProbability {
			continue
		}
		kind := SensorAcoustic
		if b.rng.Float64() < 0.5 {
			kind = SensorPressure
		}
		b.net.Sensors = append(b.net.Sensors, Sensor{
			ID:       fmt.Sprintf("SENSOR-%d", i),
			NodeID:   n.ID(),
			Position: n.Position(),
			Kind:     kind,
			Status:   "Active",
			Battery:  85 + b.rng.IntN(15),
		})
	}
}

func (b *builder) buildZone(anchor Junction) {
	b.net.Zones = append(b.net.Zones, ReplacementZone{
		ID:               "ZONE-A",
		Boundary:         polygon(anchor.Position(), b.zoneRadius, 6),
		Status:           "Active Work",
		Progress:         45,
		TargetCompletion: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	})
}
