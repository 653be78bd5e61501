package network

import "math"

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Offset(dLat, dLng float64) Coordinate {
	return Coordinate{Lat: c.Lat + dLat, Lng: c.Lng + dLng}
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{Lat: c.Lat - o.Lat, Lng: c.Lng - o.Lng}
}

func (c Coordinate) Scale(f float64) Coordinate {
	return Coordinate{Lat: c.Lat * f, Lng: c.Lng * f}
}

func (c Coordinate) Len() float64 {
	return math.Hypot(c.Lat, c.Lng)
}

// unit normalizes v. Zero-length vectors yield ErrDegenerateGeometry.
func unit(v Coordinate) (Coordinate, error) {
	l := v.Len()
	if l == 0 {
		return Coordinate{}, ErrDegenerateGeometry
	}
	return v.Scale(1 / l), nil
}

func onCircle(center Coordinate, radius, angle float64) Coordinate {
	return center.Offset(radius*math.Cos(angle), radius*math.Sin(angle))
}

// polygon returns a closed ring of n sides around center.
func polygon(center Coordinate, radius float64, sides int) []Coordinate {
	ring := make([]Coordinate, 0, sides+1)
	for i := 0; i < sides; i++ {
		angle := float64(i) / float64(sides) * 2 * math.Pi
		ring = append(ring, onCircle(center, radius, angle))
	}
	return append(ring, ring[0])
}
