package mesh

import (
	"context"
	stdmath "math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Defaults for CreateSharpEdges.
const (
	DefaultSharpEdgePrecision = 1e-5
	DefaultSharpEdgeAngle     = 25.0
)

// Tasks per worker. Rows near the start of the triangle list compare
// against more triangles, so ranges are split finer than one per worker.
const tasksPerWorker = 4

type edgeTriangle struct {
	v      [3]math.Vec3
	normal math.Vec3
}

type segment [2]math.Vec3

// CreateSharpEdges replaces the wire data with the edges shared by two LOD 0
// triangles whose normals differ by more than angleDegrees. Vertices closer
// than precision per axis are the same point. The pass runs on up to workers
// goroutines, GOMAXPROCS when workers <= 0, and records the same segments
// in the same order as CreateSharpEdgesSerial.
func (m *Mesh) CreateSharpEdges(ctx context.Context, precision, angleDegrees float64, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	all, err := m.triangles()
	if err != nil {
		return err
	}
	tris := edgeSnapshot(all)
	ranges := split(len(tris), workers*tasksPerWorker)
	results := make([][]segment, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range ranges {
		g.Go(func() error {
			out, err := sharpEdges(ctx, tris, r[0], r[1], float32(precision), threshold(angleDegrees))
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	m.setSharpEdges(results, workers)
	return nil
}

// CreateSharpEdgesSerial is CreateSharpEdges on the calling goroutine.
func (m *Mesh) CreateSharpEdgesSerial(precision, angleDegrees float64) error {
	all, err := m.triangles()
	if err != nil {
		return err
	}
	tris := edgeSnapshot(all)
	out, _ := sharpEdges(context.Background(), tris, 0, len(tris), float32(precision), threshold(angleDegrees))
	m.setSharpEdges([][]segment{out}, 1)
	return nil
}

func (m *Mesh) setSharpEdges(results [][]segment, workers int) {
	m.wire.Clear()
	n := 0
	for _, segs := range results {
		for _, s := range segs {
			m.wire.AddVertexGroup([]float32{s[0].X, s[0].Y, s[0].Z, s[1].X, s[1].Y, s[1].Z})
			n++
		}
	}
	m.bbox = nil
	logger.Debug("mesh sharp edges",
		zap.String("mesh", m.name), zap.Int("edges", n), zap.Int("workers", workers))
}

func threshold(degrees float64) float32 {
	return float32(degrees * stdmath.Pi / 180)
}

func edgeSnapshot(tris [][3]math.Vec3) []edgeTriangle {
	out := make([]edgeTriangle, len(tris))
	for i, t := range tris {
		out[i] = edgeTriangle{
			v:      t,
			normal: t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize(),
		}
	}
	return out
}

// split cuts [0, n) into at most parts contiguous ranges.
func split(n, parts int) [][2]int {
	if n == 0 {
		return nil
	}
	parts = min(parts, n)
	out := make([][2]int, 0, parts)
	for p := 0; p < parts; p++ {
		out = append(out, [2]int{p * n / parts, (p + 1) * n / parts})
	}
	return out
}

// sharpEdges tests triangles [lo, hi) against every later triangle. Each
// edge of a triangle is recorded at most once.
func sharpEdges(ctx context.Context, tris []edgeTriangle, lo, hi int, precision, angle float32) ([]segment, error) {
	var out []segment
	for i := lo; i < hi; i++ {
		if (i-lo)%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a := &tris[i]
		var done [3]bool
		for j := i + 1; j < len(tris); j++ {
			b := &tris[j]
			for e := range 3 {
				if done[e] {
					continue
				}
				p, q := a.v[e], a.v[(e+1)%3]
				if !sharesEdge(b, p, q, precision) {
					continue
				}
				if a.normal.AngleWith(b.normal) > angle {
					out = append(out, segment{p, q})
					done[e] = true
				}
			}
		}
	}
	return out, nil
}

func sharesEdge(t *edgeTriangle, p, q math.Vec3, precision float32) bool {
	for f := range 3 {
		c, d := t.v[f], t.v[(f+1)%3]
		if (p.ApproxEqual(c, precision) && q.ApproxEqual(d, precision)) ||
			(p.ApproxEqual(d, precision) && q.ApproxEqual(c, precision)) {
			return true
		}
	}
	return false
}
