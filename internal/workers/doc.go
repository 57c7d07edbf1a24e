// Package workers provides utilities for determining worker pool sizes in
// containerized environments.
//
// Go 1.19+ sets GOMAXPROCS from the container CPU limit, so pool sizes
// derived from runtime.GOMAXPROCS(0) scale correctly inside cgroups. The
// multiplier-based helpers (ForCPU, ForIO, ForMixed) adjust the base count
// for the workload profile, and the PIPELINE_WORKERS environment variable
// provides a manual override for operators.
package workers
