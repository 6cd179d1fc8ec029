// Package tick models the per-tick solver record consumed by the scene and
// the flat configuration maps sent by the UI.
//
// A [Payload] decodes from the solver's JSON (either bare or wrapped in a
// {"type": "sim_tick", "payload": ...} message). [Synthesize] produces
// self-consistent payloads from a parametric [Engine] so the viewer can run
// without a live solver.
package tick
