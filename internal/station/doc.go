// Package station defines the station-indexed data model shared by the
// geometry, overlay, particle and cooling packages.
//
// A station is one axial cross-section of the engine. The core types are:
//
//   - [Point]: an (axial position, radius) pair
//   - [Curve]: an ordered sequence of points along the axis
//   - [Profile]: the inner (hot-gas) and outer wall curves of one engine
//   - [Array]: a scalar quantity sampled at every station
//
// Values are read-only to consumers. Builders validate input up front and
// return one of the sentinel errors in this package rather than emitting
// degenerate geometry.
package station
