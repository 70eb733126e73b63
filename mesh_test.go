package grafica

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/grafica/internal/gpu"
)

func triangle() *Mesh {
	return NewMesh([]Vertex{
		V(0.0, 0.05, 0.0, 1.0, 0.0, 0.0),
		V(-0.05, -0.05, 0.0, 0.0, 1.0, 0.0),
		V(0.05, -0.05, 0.0, 0.0, 0.0, 1.0),
	}, []uint16{0, 1, 2})
}

// lastFrame returns the most recent frame and fails if none was recorded.
func lastFrame(t *testing.T, dev *gpu.HeadlessDevice) *gpu.HeadlessFrame {
	t.Helper()
	frames := dev.Frames()
	if len(frames) == 0 {
		t.Fatal("no frames recorded")
	}
	return frames[len(frames)-1]
}

func TestMeshRenderTriangle(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)
	m := triangle()
	t.Cleanup(m.Release)

	if err := m.Render(g); err != nil {
		t.Fatalf("Render: %v", err)
	}

	bufs := dev.Buffers()
	if len(bufs) != 3 {
		t.Fatalf("got %d buffers, want uniforms + vertices + indices", len(bufs))
	}
	vb, ib := bufs[1], bufs[2]

	if vb.Usage() != gputypes.BufferUsageVertex {
		t.Errorf("vertex usage = %v", vb.Usage())
	}
	if got := vb.Contents(); len(got) != 72 || !bytes.Equal(got, VertexBytes(m.Vertices)) {
		t.Errorf("vertex buffer holds %d bytes, want the 72-byte encoding", len(got))
	}
	if ib.Usage() != gputypes.BufferUsageIndex {
		t.Errorf("index usage = %v", ib.Usage())
	}
	if got := ib.Contents(); !bytes.Equal(got, []byte{0, 0, 1, 0, 2, 0}) {
		t.Errorf("index contents = %v", got)
	}
	if ib.Size() != 8 {
		t.Errorf("index allocation = %d, want 8 (padded)", ib.Size())
	}

	f := lastFrame(t, dev)
	if !f.Submitted {
		t.Error("frame not submitted")
	}
	if len(f.Passes) != 1 {
		t.Fatalf("got %d passes, want 1", len(f.Passes))
	}
	pass := f.Passes[0]
	if pass.ClearColor != (gputypes.Color{R: 0.01, G: 0.01, B: 0.01, A: 1}) {
		t.Errorf("clear color = %+v", pass.ClearColor)
	}
	if pass.State() != gpu.RenderPassStateEnded {
		t.Errorf("pass state = %v, want Ended", pass.State())
	}

	wantOps := []gpu.Op{gpu.OpSetPipeline, gpu.OpSetBindGroup, gpu.OpSetVertexBuffer, gpu.OpSetIndexBuffer, gpu.OpDrawIndexed}
	if len(pass.Commands) != len(wantOps) {
		t.Fatalf("got %d commands, want %d", len(pass.Commands), len(wantOps))
	}
	for i, op := range wantOps {
		if pass.Commands[i].Op != op {
			t.Errorf("command %d = %v, want %v", i, pass.Commands[i].Op, op)
		}
	}

	cmds := pass.Commands
	if cmds[0].Pipeline != g.pipeline {
		t.Error("wrong pipeline bound")
	}
	if cmds[1].Index != 0 || cmds[1].BindGroup != g.uniformGroup {
		t.Error("uniform bind group not bound at index 0")
	}
	if cmds[2].Index != 0 || cmds[2].Buffer != vb {
		t.Error("vertex buffer not bound at slot 0")
	}
	if cmds[3].Buffer != ib || cmds[3].IndexFormat != gputypes.IndexFormatUint16 {
		t.Error("index buffer not bound as Uint16")
	}
	want := gpu.DrawIndexedArgs{IndexCount: 3, InstanceCount: 1}
	if cmds[4].Draw != want {
		t.Errorf("draw = %+v, want %+v", cmds[4].Draw, want)
	}
}

func TestMeshBuffersCreatedOnce(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)
	m := triangle()

	for i := 0; i < 3; i++ {
		if err := m.Render(g); err != nil {
			t.Fatalf("Render %d: %v", i, err)
		}
	}
	if n := len(dev.Buffers()); n != 3 {
		t.Errorf("got %d buffers after 3 renders, want 3", n)
	}
	if n := len(dev.Frames()); n != 3 {
		t.Errorf("got %d frames, want 3", n)
	}
	if m.vertex.buf != dev.Buffers()[1] || m.index.buf != dev.Buffers()[2] {
		t.Error("mesh slots do not hold the first buffers")
	}
	for _, f := range dev.Frames() {
		if f.Passes[0].Commands[2].Buffer != m.vertex.buf {
			t.Error("a frame drew from a different vertex buffer")
		}
	}
}

func TestMeshIndicesChangedAfterRender(t *testing.T) {
	tests := []struct {
		name      string
		release   bool
		wantCount uint32
		wantBufs  int
	}{
		{"kept buffers", false, 3, 3},
		{"after release", true, 6, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, dev := newTestGraphics(t, 800, 600)
			m := triangle()
			t.Cleanup(m.Release)

			if err := m.Render(g); err != nil {
				t.Fatal(err)
			}
			m.Indices = append(m.Indices, 0, 1, 2)
			if tt.release {
				m.Release()
			}
			if err := m.Render(g); err != nil {
				t.Fatal(err)
			}

			if n := len(dev.Buffers()); n != tt.wantBufs {
				t.Errorf("got %d buffers, want %d", n, tt.wantBufs)
			}
			cmds := lastFrame(t, dev).Passes[0].Commands
			draw := cmds[len(cmds)-1].Draw
			if draw.IndexCount != tt.wantCount {
				t.Errorf("draw IndexCount = %d, want %d", draw.IndexCount, tt.wantCount)
			}
			held := uint32(len(m.index.buf.(*gpu.HeadlessBuffer).Contents()) / 2)
			if draw.IndexCount > held {
				t.Errorf("draw reads %d indices from a buffer holding %d", draw.IndexCount, held)
			}
		})
	}
}

func TestMeshRelease(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)
	m := triangle()

	if err := m.Render(g); err != nil {
		t.Fatal(err)
	}
	m.Release()
	m.Release()

	if m.vertex.state != slotUninitialized || m.index.state != slotUninitialized {
		t.Errorf("slots = %v/%v after Release", m.vertex.state, m.index.state)
	}
	if m.index.count != 0 {
		t.Errorf("index count = %d after Release", m.index.count)
	}
	if !dev.Buffers()[1].Released() || !dev.Buffers()[2].Released() {
		t.Error("buffers not released")
	}

	if err := m.Render(g); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Buffers()); n != 5 {
		t.Errorf("got %d buffers, want 5 after re-creating", n)
	}
}

func TestMeshRenderAfterResize(t *testing.T) {
	g, dev := newTestGraphics(t, 1024, 768)
	m := triangle()

	if err := g.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if err := m.Render(g); err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := lastFrame(t, dev)
	if f.Width != 800 || f.Height != 600 {
		t.Errorf("frame = %dx%d, want 800x600", f.Width, f.Height)
	}
}

func TestMeshRenderAcquireFailures(t *testing.T) {
	tests := []struct {
		name            string
		acquireErr      error
		wantErr         error
		wantReconfigure bool
	}{
		{"timeout", gpu.ErrFrameTimeout, ErrFrameTimeout, false},
		{"outdated", gpu.ErrSurfaceOutdated, nil, true},
		{"other", errors.New("device lost"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, dev := newTestGraphics(t, 800, 600)
			m := triangle()
			configures := len(dev.Configures())

			dev.FailAcquire(tt.acquireErr)
			err := m.Render(g)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Render error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantReconfigure:
				if err != nil {
					t.Fatalf("Render error = %v, want skipped frame", err)
				}
			default:
				if !errors.Is(err, tt.acquireErr) {
					t.Fatalf("Render error = %v, want %v", err, tt.acquireErr)
				}
			}

			if n := len(dev.Frames()); n != 0 {
				t.Errorf("%d frames recorded for a failed acquire", n)
			}
			reconfigured := len(dev.Configures()) > configures
			if reconfigured != tt.wantReconfigure {
				t.Errorf("reconfigured = %v, want %v", reconfigured, tt.wantReconfigure)
			}

			// The next frame draws normally.
			if tt.wantReconfigure {
				if err := m.Render(g); err != nil {
					t.Fatalf("Render after reconfigure: %v", err)
				}
				if !lastFrame(t, dev).Submitted {
					t.Error("frame after reconfigure not submitted")
				}
			}
		})
	}
}

func TestMeshRenderZeroArea(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)
	m := triangle()

	if err := g.Resize(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Render(g); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := len(dev.Frames()); n != 0 {
		t.Errorf("got %d frames while minimized, want 0", n)
	}

	if err := g.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if err := m.Render(g); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Frames()); n != 1 {
		t.Errorf("got %d frames after restore, want 1", n)
	}
}

func TestMeshRenderReleasedGraphics(t *testing.T) {
	g, _ := newTestGraphics(t, 800, 600)
	g.Release()

	if err := triangle().Render(g); !errors.Is(err, ErrReleased) {
		t.Errorf("Render on released graphics = %v, want ErrReleased", err)
	}
}

func TestSlotStateString(t *testing.T) {
	tests := []struct {
		s    slotState
		want string
	}{
		{slotUninitialized, "Uninitialized"},
		{slotInitialized, "Initialized"},
		{slotState(9), "slotState(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIndexBytes(t *testing.T) {
	got := indexBytes([]uint16{0x0102, 0xfffe})
	want := []byte{0x02, 0x01, 0xfe, 0xff}
	if !bytes.Equal(got, want) {
		t.Errorf("indexBytes = % x, want % x", got, want)
	}
}
