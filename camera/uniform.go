package camera

// CameraUniform is the GPU-visible camera uniform: world position (w=1) and
// the combined view-projection matrix. Field-for-field from
// original_source/core/voxel/src/uniform.rs's CameraUniform.
type CameraUniform struct {
	Position       [4]float32
	ViewProjection Mat4
}

// NewCameraUniform snapshots c's current position and view-projection.
func NewCameraUniform(c *Camera) CameraUniform {
	p := c.Arcball.Position()
	return CameraUniform{
		Position:       [4]float32{p[0], p[1], p[2], 1},
		ViewProjection: c.ViewProjection(),
	}
}

// LightUniform is a directional light: color, ambient intensity, direction,
// and an explicit trailing pad field so the struct's size stays a multiple
// of vec4 alignment, matching LightUniform's _dummy field.
type LightUniform struct {
	Color     [3]float32
	Ambient   float32
	Direction [3]float32
	_         float32
}

// DefaultLightUniform mirrors LightUniform::default(): a near-white key
// light at low ambient, shining down and across.
func DefaultLightUniform() LightUniform {
	return LightUniform{
		Color:     [3]float32{0.9, 0.9, 0.9},
		Ambient:   0.01,
		Direction: [3]float32{-0.5, -0.5, -0.5},
	}
}

// ModelUniform is the per-instance model matrix uniform.
type ModelUniform struct {
	Model Mat4
}

// NewModelUniform wraps m.
func NewModelUniform(m Mat4) ModelUniform {
	return ModelUniform{Model: m}
}

// IdentityModelUniform mirrors ModelUniform::identity().
func IdentityModelUniform() ModelUniform {
	return ModelUniform{Model: Identity}
}
