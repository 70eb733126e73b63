package grafica

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// VertexSize is the stride of one encoded Vertex in bytes.
const VertexSize = 24

// Vertex is a position and an RGB color.
//
// Encoded little-endian: Position at offset 0 (shader location 0), Color at
// offset 12 (shader location 1), both Float32x3.
type Vertex struct {
	Position f32.Vec3
	Color    f32.Vec3
}

// V is shorthand for a Vertex literal.
func V(x, y, z, r, g, b float32) Vertex {
	return Vertex{Position: f32.Vec3{x, y, z}, Color: f32.Vec3{r, g, b}}
}

// AppendBytes appends the encoded vertex to dst.
func (v Vertex) AppendBytes(dst []byte) []byte {
	dst = appendVec3(dst, v.Position)
	return appendVec3(dst, v.Color)
}

// DecodeVertex reads one vertex from the first VertexSize bytes of b.
func DecodeVertex(b []byte) (Vertex, error) {
	if len(b) < VertexSize {
		return Vertex{}, fmt.Errorf("grafica: vertex needs %d bytes, got %d", VertexSize, len(b))
	}
	return Vertex{Position: readVec3(b[0:12]), Color: readVec3(b[12:24])}, nil
}

// VertexBytes encodes vertices back to back.
func VertexBytes(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*VertexSize)
	for _, v := range vertices {
		out = v.AppendBytes(out)
	}
	return out
}

// VertexLayout describes the Vertex encoding to the pipeline.
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

func appendVec3(dst []byte, v f32.Vec3) []byte {
	for _, c := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(c))
	}
	return dst
}

func readVec3(b []byte) f32.Vec3 {
	return f32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
