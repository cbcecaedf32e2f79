package material

import "github.com/Faultbox/midgard-mesh/pkg/encoding"

// Encode writes the material id, name and color.
func (m *Material) Encode(w *encoding.Writer) {
	w.Uint32(m.id)
	w.String(m.name)
	for _, c := range m.Color() {
		w.Float32(c)
	}
}

// Decode reads a material written by Encode. The material gets a fresh id;
// the id it was saved with is returned alongside.
func Decode(r *encoding.Reader) (m *Material, savedID uint32, err error) {
	savedID = r.Uint32()
	name := r.String()
	var c [4]float32
	for i := range c {
		c[i] = r.Float32()
	}
	if err := r.Err(); err != nil {
		return nil, 0, err
	}
	return New(name, c), savedID, nil
}
