// Package rover provides the core vocabulary for wheeled mobile robot
// simulation.
//
// The package defines the shared types and contracts consumed by the model
// family and the simulation engine:
//
//   - [ParameterSet]: immutable physical description of one robot
//   - [Model]: kinematic/dynamic contract implemented per robot variant
//   - [MotionProfile], [TerrainProfile]: pure input functions of time/distance
//   - [Snapshot]: one recorded instant (pose, wheels, stability flags)
//   - [History]: bounded, append-only run record
//
// # Error taxonomy
//
// Construction-time problems surface as [ErrInvalidGeometry] or
// [ErrInvalidProfile]. Control-surface misuse surfaces as [ErrAlreadyRunning]
// or [ErrInvalidState]. Runtime numeric faults are wrapped in [Fault] and
// reported through the engine's finish callback, never by a panicking loop.
// Wheel slip, tip-over risk and a low stability margin are data on the
// snapshot, not errors.
package rover
