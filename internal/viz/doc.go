// Package viz is the terminal front end for a scene.
//
// [Draw] rasterizes the scene's solids through an orbiting [Camera] into a
// Braille [Canvas] with a per-dot depth buffer: triangles are filled with a
// dithered headlight shade, lines and particle clouds are plotted as dots,
// and geometry behind a material's clip planes is skipped. [Model] is a
// Bubble Tea program that pulls ticks from a [tick.Source] at the data rate,
// advances the scene at the frame rate and shows performance, the active
// legend and an asciigraph plot of one station array beside the view.
//
// # Key Bindings
//
//	Space   - Pause/Resume ticks and particles
//	M, Tab  - Next analysis view
//	0-4     - Select view (none, thermal, stress, flow, cooling)
//	[ ]     - Move the cooling cross-section
//	↑ ↓     - Thrust
//	← → W S - Orbit
//	+ -     - Zoom
//	F       - Refit the camera
//	P       - Cycle the plotted station array
//	T       - Cycle color themes
//	?       - Show help
package viz
