// Package physics implements the four wheeled-robot model variants.
//
// Each variant satisfies [rover.Model], pairing an explicit-Euler kinematic
// step with a per-wheel force computation:
//
//   - [Differential]: two driven wheels plus a caster (centered or offset CG)
//   - [FourWheel]: four driven wheels in a rectangle (centered or offset CG)
//
// Models are pure: all persistent state lives in the caller's [rover.State].
// Normal forces are distributed by exact linear superposition so that their
// sum always equals m*g*cos(pitch); wheel unloading is reported as tip-over
// data rather than clamped away. Tangential forces saturate at the static
// friction limit, with the clipping reported per wheel as a slip flag.
package physics
