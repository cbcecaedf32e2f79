package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	l := v.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3AngleWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same", Vec3{1, 0, 0}, Vec3{2, 0, 0}, 0},
		{"orthogonal", Vec3{1, 0, 0}, Vec3{0, 1, 0}, math.Pi / 2},
		{"opposite", Vec3{0, 0, 1}, Vec3{0, 0, -1}, math.Pi},
		{"degenerate", Vec3{}, Vec3{0, 1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.AngleWith(tt.b)
			if abs(got-float32(tt.want)) > 0.0001 {
				t.Errorf("AngleWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3ApproxEqual(t *testing.T) {
	a := Vec3{1, 2, 3}
	if !a.ApproxEqual(Vec3{1.00001, 2, 3}, 0.0001) {
		t.Error("expected vectors within precision to be equal")
	}
	if a.ApproxEqual(Vec3{1.1, 2, 3}, 0.0001) {
		t.Error("expected vectors outside precision to differ")
	}
}

func TestBox(t *testing.T) {
	var b Box
	if !b.IsEmpty() {
		t.Fatal("zero Box should be empty")
	}
	b = b.CombinePoints([]float32{1, 2, 3, -1, 5, 0})
	if b.Min != (Vec3{-1, 2, 0}) || b.Max != (Vec3{1, 5, 3}) {
		t.Errorf("CombinePoints: got %v..%v", b.Min, b.Max)
	}
	if b.Center() != (Vec3{0, 3.5, 1.5}) {
		t.Errorf("Center() = %v", b.Center())
	}

	merged := b.CombineBox(Box{}).CombineBox(Box{}.Combine(Vec3{0, 0, 10}))
	if merged.Max.Z != 10 || merged.Min != b.Min {
		t.Errorf("CombineBox: got %v..%v", merged.Min, merged.Max)
	}
}
