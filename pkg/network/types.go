package network

import (
	"slices"
	"time"
)

type NodeKind string

const (
	KindSource       NodeKind = "Source"
	KindJunction     NodeKind = "Junction"
	KindDistribution NodeKind = "Distribution"
	KindDemand       NodeKind = "Demand"
)

type SegmentState string

const (
	StateNormal   SegmentState = "Normal"
	StateBurst    SegmentState = "Burst"
	StateIsolated SegmentState = "Isolated" // Manual valve closure.
)

type Confirmation string

const (
	Confirmed     Confirmation = "Confirmed"
	Probabilistic Confirmation = "Probabilistic"
)

type SegmentClass string

const (
	ClassLoop      SegmentClass = "loop"
	ClassFeeder    SegmentClass = "feeder"
	ClassBranch    SegmentClass = "branch"
	ClassSubBranch SegmentClass = "sub-branch"
)

type ValveStatus string

const (
	ValveOpen   ValveStatus = "Open"
	ValveClosed ValveStatus = "Closed"
)

type SensorKind string

const (
	SensorPressure SensorKind = "Pressure"
	SensorAcoustic SensorKind = "Acoustic"
)

// Node is a point in the network. The concrete variants are Source,
// Junction, Distribution and Demand.
type Node interface {
	ID() string
	Kind() NodeKind
	Position() Coordinate
	// Supplied reports whether the node was reachable from a source the
	// last time reachability was computed.
	Supplied() bool

	withSupply(supplied bool) Node
}

type nodeBase struct {
	id       string
	position Coordinate
	supplied bool
}

func (b nodeBase) ID() string           { return b.id }
func (b nodeBase) Position() Coordinate { return b.position }
func (b nodeBase) Supplied() bool       { return b.supplied }

// Source is a treatment plant feeding the network.
type Source struct {
	nodeBase
	Plant string
}

func NewSource(id string, pos Coordinate, plant string) Source {
	return Source{nodeBase: nodeBase{id: id, position: pos, supplied: true}, Plant: plant}
}

func (s Source) Kind() NodeKind { return KindSource }

func (s Source) withSupply(supplied bool) Node {
	s.supplied = supplied
	return s
}

// Junction sits on the backbone loop.
type Junction struct {
	nodeBase
	LoopIndex int
	Valve     ValveStatus
}

func NewJunction(id string, pos Coordinate, loopIndex int) Junction {
	return Junction{
		nodeBase:  nodeBase{id: id, position: pos, supplied: true},
		LoopIndex: loopIndex,
		Valve:     ValveOpen,
	}
}

func (j Junction) Kind() NodeKind { return KindJunction }

func (j Junction) withSupply(supplied bool) Node {
	j.supplied = supplied
	return j
}

// Distribution is a branch hub hanging off a loop junction.
type Distribution struct {
	nodeBase
	Junction string
}

func NewDistribution(id string, pos Coordinate, junction string) Distribution {
	return Distribution{nodeBase: nodeBase{id: id, position: pos, supplied: true}, Junction: junction}
}

func (d Distribution) Kind() NodeKind { return KindDistribution }

func (d Distribution) withSupply(supplied bool) Node {
	d.supplied = supplied
	return d
}

// Demand is a household or small-area consumption point.
type Demand struct {
	nodeBase
	Distribution string
}

func NewDemand(id string, pos Coordinate, distribution string) Demand {
	return Demand{nodeBase: nodeBase{id: id, position: pos, supplied: true}, Distribution: distribution}
}

func (d Demand) Kind() NodeKind { return KindDemand }

func (d Demand) withSupply(supplied bool) Node {
	d.supplied = supplied
	return d
}

// Segment is a pipe between two nodes. Source/Target is storage order only;
// water flows both ways.
type Segment struct {
	ID                string        `json:"id"`
	Source            string        `json:"source"`
	Target            string        `json:"target"`
	Geometry          [2]Coordinate `json:"geometry"`
	Class             SegmentClass  `json:"class"`
	Material          string        `json:"material"`
	Diameter          int           `json:"diameter_mm"`
	InstalledYear     int           `json:"installed_year"`
	RatedPressure     int           `json:"rated_pressure_psi"`
	PriorityScore     int           `json:"priority_score"`
	ReplacementStatus string        `json:"replacement_status"`
	State             SegmentState  `json:"state"`
	Confirmation      Confirmation  `json:"confirmation"`
}

// Active reports whether water can pass through the segment.
func (s Segment) Active() bool {
	return s.State != StateBurst && s.State != StateIsolated
}

type Sensor struct {
	ID       string     `json:"id"`
	NodeID   string     `json:"node_id"`
	Position Coordinate `json:"position"`
	Kind     SensorKind `json:"kind"`
	Status   string     `json:"status"`
	Battery  int        `json:"battery"`
}

// ReplacementZone is a descriptive work area. Boundary is a closed ring.
type ReplacementZone struct {
	ID               string       `json:"id"`
	Boundary         []Coordinate `json:"boundary"`
	Status           string       `json:"status"`
	Progress         int          `json:"progress"`
	TargetCompletion time.Time    `json:"target_completion"`
}

// Network is the aggregate passed into and returned from every operation.
type Network struct {
	Nodes    []Node
	Segments []Segment
	Sensors  []Sensor
	Zones    []ReplacementZone
}

// Clone returns a network whose slices can be modified without touching n.
func (n Network) Clone() Network {
	return Network{
		Nodes:    slices.Clone(n.Nodes),
		Segments: slices.Clone(n.Segments),
		Sensors:  slices.Clone(n.Sensors),
		Zones:    slices.Clone(n.Zones),
	}
}

// Index maps ids to slice positions. Build it once per operation.
type Index struct {
	nodes    map[string]int
	segments map[string]int
}

func NewIndex(n Network) Index {
	ix := Index{
		nodes:    make(map[string]int, len(n.Nodes)),
		segments: make(map[string]int, len(n.Segments)),
	}
	for i, node := range n.Nodes {
		ix.nodes[node.ID()] = i
	}
	for i, s := range n.Segments {
		ix.segments[s.ID] = i
	}
	return ix
}

func (ix Index) Node(id string) (int, bool) {
	i, ok := ix.nodes[id]
	return i, ok
}

func (ix Index) Segment(id string) (int, bool) {
	i, ok := ix.segments[id]
	return i, ok
}
