package math

// Box is an axis-aligned bounding box. The zero value is empty.
type Box struct {
	Min, Max Vec3
	valid    bool
}

// IsEmpty reports whether nothing has been combined into the box.
func (b Box) IsEmpty() bool { return !b.valid }

// Combine grows the box to contain p.
func (b Box) Combine(p Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	b.Min = Vec3{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)}
	b.Max = Vec3{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)}
	return b
}

// CombineBox grows the box to contain o.
func (b Box) CombineBox(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Combine(o.Min).Combine(o.Max)
}

// CombinePoints grows the box to contain packed xyz positions.
func (b Box) CombinePoints(positions []float32) Box {
	for i := 0; i+2 < len(positions); i += 3 {
		b = b.Combine(Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

// Center returns the middle of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
