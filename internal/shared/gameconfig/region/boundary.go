package region

import (
	"context"
	"math"
)

// BoundaryProvider supplies the outline polygon of a settlement as closed
// [lat, lng] rings. Real providers query an external geodata service.
type BoundaryProvider interface {
	Boundary(ctx context.Context, s Seed) ([][2]float64, error)
}

// SyntheticBoundaries draws a deterministic twelve-point polygon around the
// anchor; the shape varies with the seed id.
type SyntheticBoundaries struct {
	Radius float64
	Points int
}

func NewSyntheticBoundaries() SyntheticBoundaries {
	return SyntheticBoundaries{Radius: 0.05, Points: 12}
}

func (b SyntheticBoundaries) Boundary(_ context.Context, s Seed) ([][2]float64, error) {
	points := b.Points
	if points < 3 {
		points = 12
	}
	radius := b.Radius
	if radius <= 0 {
		radius = 0.05
	}

	shapeOffset := float64(s.ID%5) * 0.2
	variation := float64(s.ID%3) * 0.15
	lobes := float64(2 + s.ID%3)

	ring := make([][2]float64, 0, points+1)
	for i := 0; i < points; i++ {
		angle := float64(i) / float64(points) * 2 * math.Pi
		r := radius * (1 + math.Sin(angle*lobes)*variation)
		ring = append(ring, [2]float64{
			s.Latitude + math.Sin(angle+shapeOffset)*r,
			s.Longitude + math.Cos(angle+shapeOffset)*r,
		})
	}
	ring = append(ring, ring[0])
	return ring, nil
}
