package planet

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// OrbitPosition places a star on its orbit around the planet.
type OrbitPosition struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	OrbitRadius float64 `json:"orbit_radius"`
	OrbitAngle  float64 `json:"orbit_angle"`
}

// Coordinate is a point in planet space; trees sit on the unit sphere.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// StarPosition returns the orbit of the index-th of total stars.
// The generator is seeded from the whole seconds of ts plus index, so a star keeps
// its place every time the same data is rendered.
func StarPosition(index, total int, ts time.Time) OrbitPosition {
	seed := ts.Unix() + int64(index)
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	if total < 1 {
		total = 1
	}
	radius := 1.5 + rng.Float64()*1.5
	angle := math.Mod(360/float64(total)*float64(index)+rng.Float64()*30, 360)
	if angle < 0 {
		angle += 360
	}
	rad := angle * math.Pi / 180
	y := rng.Float64()*0.5 - 0.25

	return OrbitPosition{
		X:           round2(radius * math.Cos(rad)),
		Y:           round2(y),
		Z:           round2(radius * math.Sin(rad)),
		OrbitRadius: round2(radius),
		OrbitAngle:  round2(angle),
	}
}

// TreePosition returns a point on the unit sphere for the index-th tree of a theme.
// Points are uniform over the surface (inverse-transform sampling of the polar angle).
func TreePosition(theme string, index int) Coordinate {
	seed := themeHash(theme) + uint64(int64(index))
	rng := rand.New(rand.NewPCG(seed, 0))

	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)

	return Coordinate{
		X: round2(math.Sin(phi) * math.Cos(theta)),
		Y: round2(math.Sin(phi) * math.Sin(theta)),
		Z: round2(math.Cos(phi)),
	}
}

// themeHash must stay stable across processes; stored tree positions depend on it.
func themeHash(theme string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(theme))
	return h.Sum64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
