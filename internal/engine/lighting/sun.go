// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude/latitude angles in degrees to a light
// direction. Longitude is rotation around Y from +Z (0-360), latitude is
// elevation from the horizon (0-90). The result is normalized and points
// towards the sun.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := mgl32.DegToRad(longitude)
	lat := mgl32.DegToRad(latitude)
	return mgl32.Vec3{
		math32.Cos(lat) * math32.Sin(lon),
		math32.Sin(lat),
		math32.Cos(lat) * math32.Cos(lon),
	}
}

// Incident returns the direction light travels for a sun at the given
// angles, as shaders expect it.
func Incident(longitude, latitude float32) mgl32.Vec3 {
	return SunDirection(longitude, latitude).Mul(-1)
}
