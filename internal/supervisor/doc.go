// Package supervisor starts and stops the managed background services,
// tracking each one through a pid file in the run directory.
//
// Children are detached into their own session at spawn time, so they keep
// running after the launching invocation exits; the pid file is the only
// state shared between invocations. Detachment and the signal-based stop
// path are only fully supported on Unix platforms. On Windows the
// supervisor degrades to best-effort semantics: liveness checks consult the
// process table and stop falls back to terminating the direct child.
package supervisor
