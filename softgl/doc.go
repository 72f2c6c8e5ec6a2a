// Package softgl is a small software graphics context with an OpenGL ES
// shaped API: buffer objects, linked programs with named attributes and
// uniforms, attribute pointers, clears and indexed triangle draws.
//
// Programs are Go functions instead of shader source. Rendering writes into
// a caller-provided Target.
//
// Pipeline (fixed):
//
//	Vertex fetch → Vertex function → Clip → Viewport → Rasterization → Depth test → Fragment function → Target.
//
// Varyings are interpolated linearly in screen space, which is exact for
// affine (orthographic) projections.
package softgl
