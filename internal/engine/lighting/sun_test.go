package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     mgl32.Vec3
	}{
		{0, 0, mgl32.Vec3{0, 0, 1}},
		{90, 0, mgl32.Vec3{1, 0, 0}},
		{180, 0, mgl32.Vec3{0, 0, -1}},
		{0, 90, mgl32.Vec3{0, 1, 0}},
		{45, 45, mgl32.Vec3{0.5, 0.70710677, 0.5}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-5), "(%v,%v): got %v want %v", tt.lon, tt.lat, got, tt.want)
		assert.InDelta(t, 1, got.Len(), 1e-5)
	}
}

func TestIncident(t *testing.T) {
	sun := SunDirection(30, 60)
	assert.True(t, Incident(30, 60).Add(sun).ApproxEqualThreshold(mgl32.Vec3{}, 1e-6))
}
