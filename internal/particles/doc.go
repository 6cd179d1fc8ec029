// Package particles animates the exhaust plume and the internal gas flow as
// fixed pools of point particles.
//
// Both systems keep a lifetime in [0,1) per particle that wraps on overflow,
// so a pool is an endless stream that never allocates after construction.
// Positions and colors are computed on the host and written into one
// point-cloud geometry per system, uploaded in a single batch per frame.
package particles
