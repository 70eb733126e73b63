package grafica

import "golang.org/x/image/math/f32"

// UniformsSize is the size of the uniform block: a vec3 padded to 16 bytes.
const UniformsSize = 16

// Uniforms is the block visible to the fragment stage at @group(0)
// @binding(0). The game writes it once per frame in UpdateUniforms.
type Uniforms struct {
	Color f32.Vec3
}

// SetColor sets the RGB color.
func (u *Uniforms) SetColor(r, g, b float32) {
	u.Color = f32.Vec3{r, g, b}
}

// Bytes returns the little-endian std140 encoding.
func (u Uniforms) Bytes() []byte {
	out := make([]byte, 0, UniformsSize)
	out = appendVec3(out, u.Color)
	return append(out, 0, 0, 0, 0)
}
