// Package usage provides the resource-usage clocks a turn is measured against.
//
// A clock reports how much budget the current turn has consumed, in
// milliseconds. Readings are monotonically non-decreasing within a turn and
// restart at zero when the host resets the clock at a turn boundary.
//
// Clocks:
//   - ProcessClock: CPU time (user + system) of the current process
//   - WallClock: wall time elapsed since the turn started (simulation hosts)
//   - ManualClock: caller-driven readings for tests and replay
package usage
