package knot

import "trefoil/vmath"

// Vertex layout of VertexBuffer.
const (
	FloatsPerVertex = 6
	VertexStride    = FloatsPerVertex * 4 // bytes
	PositionOffset  = 0                   // bytes
	NormalOffset    = 3 * 4               // bytes
)

// MaxVertices is the largest vertex count addressable by IndexBuffer.
const MaxVertices = 1 << 16

const (
	// Epsilon is the parameter step used for finite-difference normals.
	Epsilon = 0.01
	// DegenerateLength is the cross product length under which a normal is
	// treated as undefined.
	DegenerateLength = 1e-12
)

// FallbackNormal replaces an undefined normal when no earlier one exists.
var FallbackNormal = vmath.V3(0, 1, 0)

// Sample is one tube surface vertex.
type Sample struct {
	Position vmath.Vec3
	Normal   vmath.Vec3
}

// VertexBuffer holds interleaved position/normal float32 triples,
// FloatsPerVertex per vertex, vertex index slice*stacks+stack.
type VertexBuffer []float32

// Len returns the number of vertices.
func (b VertexBuffer) Len() int { return len(b) / FloatsPerVertex }

// Sample returns vertex i.
func (b VertexBuffer) Sample(i int) Sample {
	o := i * FloatsPerVertex
	return Sample{
		Position: vmath.V3(b[o], b[o+1], b[o+2]),
		Normal:   vmath.V3(b[o+3], b[o+4], b[o+5]),
	}
}

func (b VertexBuffer) set(i int, s Sample) {
	o := i * FloatsPerVertex
	b[o+0], b[o+1], b[o+2] = s.Position.X, s.Position.Y, s.Position.Z
	b[o+3], b[o+4], b[o+5] = s.Normal.X, s.Normal.Y, s.Normal.Z
}

// IndexBuffer is a triangle list, three indices per triangle.
type IndexBuffer []uint16

// Mesh is a tessellated tube.
type Mesh struct {
	Slices int
	Stacks int

	Vertices VertexBuffer
	Indices  IndexBuffer
}

// NewMesh builds the vertex and index buffers for a slices x stacks grid.
func NewMesh(slices, stacks int) Mesh {
	return Mesh{
		Slices:   slices,
		Stacks:   stacks,
		Vertices: BuildVertexBuffer(slices, stacks),
		Indices:  BuildIndexBuffer(slices, stacks),
	}
}

func (m Mesh) VertexCount() int { return m.Vertices.Len() }
func (m Mesh) IndexCount() int  { return len(m.Indices) }

// BuildVertexBuffer samples the surface on a slices x stacks grid.
//
// Callers must pass slices >= 1 and stacks >= 3.
func BuildVertexBuffer(slices, stacks int) VertexBuffer {
	return buildVertexBuffer(slices, stacks, Evaluate)
}

func buildVertexBuffer(slices, stacks int, eval func(s, t float32) vmath.Vec3) VertexBuffer {
	buf := make(VertexBuffer, slices*stacks*FloatsPerVertex)
	ds := 1 / float32(slices)
	dt := 1 / float32(stacks)

	last := FallbackNormal
	for slice := 0; slice < slices; slice++ {
		s := float32(slice) * ds
		for stack := 0; stack < stacks; stack++ {
			t := float32(stack) * dt

			p := eval(s, t)
			n, ok := estimateNormal(eval, p, s, t)
			if ok {
				last = n
			} else {
				n = last
			}
			buf.set(slice*stacks+stack, Sample{Position: p, Normal: n})
		}
	}
	return buf
}

// estimateNormal crosses forward differences along s and t. The result
// points away from the tube axis.
func estimateNormal(eval func(s, t float32) vmath.Vec3, p vmath.Vec3, s, t float32) (vmath.Vec3, bool) {
	ps := eval(s+Epsilon, t).Sub(p)
	pt := eval(s, t+Epsilon).Sub(p)
	n := vmath.Cross(ps, pt)

	l := vmath.Len(n)
	if !(l > DegenerateLength) {
		return vmath.Vec3{}, false
	}
	n = n.Mul(1 / l)
	if !vmath.IsFinite(n) {
		return vmath.Vec3{}, false
	}
	return n, true
}

// BuildIndexBuffer emits two triangles per grid cell. Stacks wrap around
// the tube and the last slice connects back to slice 0, so no seam
// vertices are duplicated.
//
// Callers must pass slices >= 1, stacks >= 3 and slices*stacks <= MaxVertices.
func BuildIndexBuffer(slices, stacks int) IndexBuffer {
	n := slices * stacks
	idx := make(IndexBuffer, 0, n*6)
	for i := 0; i < n; i += stacks {
		for j := 0; j < stacks; j++ {
			a := i + j
			b := i + (j+1)%stacks
			c := (a + stacks) % n
			d := (b + stacks) % n

			idx = append(idx,
				uint16(a), uint16(c), uint16(b),
				uint16(b), uint16(c), uint16(d),
			)
		}
	}
	return idx
}
