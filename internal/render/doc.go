// Package render models GPU-resident resources for the engine scene.
//
// A [Device] hands out [Geometry], [Material] and [Texture] objects and
// keeps a live count per kind, so owners can prove that repeated rebuilds and
// mode switches release everything they create. Disposing a resource twice
// returns [ErrDisposed] instead of corrupting the counts.
//
// Solids pair one geometry with one material and are arranged in [Group]
// trees. Front ends (terminal or window viewers) read these structures each
// frame; the package itself performs no drawing.
package render
