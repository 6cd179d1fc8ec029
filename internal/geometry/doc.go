// Package geometry synthesizes engine surfaces from axial profiles.
//
// All builders are pure functions returning a flat [Mesh] (float32
// positions, normals, optional colors and uint32 indices) ready for upload.
// The engine axis is +X; a station at angle θ sits at (x, r·cosθ, r·sinθ),
// so injector orifice offsets (y, z) map directly onto the face plane.
//
// Invalid input never produces degenerate geometry: builders return an
// empty mesh together with an error from package station or [ErrSegments].
package geometry
