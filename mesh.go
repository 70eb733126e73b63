package grafica

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/grafica/internal/gpu"
)

// slotState is the lifecycle of a lazily created GPU buffer.
type slotState uint8

const (
	slotUninitialized slotState = iota
	slotInitialized
)

func (s slotState) String() string {
	switch s {
	case slotUninitialized:
		return "Uninitialized"
	case slotInitialized:
		return "Initialized"
	default:
		return fmt.Sprintf("slotState(%d)", int(s))
	}
}

// bufferSlot holds a buffer that is created on first use and kept until
// released. count is the number of elements the buffer was filled with.
type bufferSlot struct {
	state slotState
	buf   gpu.Buffer
	count uint32
}

// get returns the slot's buffer, creating it with create if the slot is
// uninitialized and recording count for it. A failed create leaves the
// slot uninitialized.
func (s *bufferSlot) get(count int, create func() (gpu.Buffer, error)) (gpu.Buffer, error) {
	if s.state == slotInitialized {
		return s.buf, nil
	}
	buf, err := create()
	if err != nil {
		return nil, err
	}
	s.buf = buf
	s.count = uint32(count)
	s.state = slotInitialized
	return buf, nil
}

func (s *bufferSlot) release() {
	if s.state == slotInitialized {
		s.buf.Release()
	}
	s.buf = nil
	s.count = 0
	s.state = slotUninitialized
}

// Mesh is an indexed triangle list. Its GPU buffers are created on the
// first Render and reused afterwards; changing Vertices or Indices after
// that has no effect until Release.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16

	vertex bufferSlot
	index  bufferSlot
}

// NewMesh returns a mesh over the given vertices and indices.
func NewMesh(vertices []Vertex, indices []uint16) *Mesh {
	return &Mesh{Vertices: vertices, Indices: indices}
}

// Render draws the mesh as one frame: it clears the swapchain image, draws
// every index once and presents.
//
// Render returns nil without drawing when the frame is skipped, which
// happens while the window has zero area or after the surface was found
// outdated and reconfigured.
func (m *Mesh) Render(g *GraphicsState) error {
	vb, err := m.vertex.get(len(m.Vertices), func() (gpu.Buffer, error) {
		return g.createBuffer("grafica vertices", gputypes.BufferUsageVertex, VertexBytes(m.Vertices))
	})
	if err != nil {
		return err
	}
	ib, err := m.index.get(len(m.Indices), func() (gpu.Buffer, error) {
		return g.createBuffer("grafica indices", gputypes.BufferUsageIndex, indexBytes(m.Indices))
	})
	if err != nil {
		return err
	}
	return g.drawIndexed(vb, ib, m.index.count)
}

// Release frees the GPU buffers. The next Render creates them again.
func (m *Mesh) Release() {
	m.vertex.release()
	m.index.release()
}

func indexBytes(indices []uint16) []byte {
	out := make([]byte, 0, 2*len(indices))
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}
