// Package memory configures Go's soft memory limit for containerized
// deployments.
//
// Image decode and transform buffers dominate this process's heap, so
// running without a limit inside a container invites OOM kills. When
// the orchestrator passes the container limit via MEMORY_LIMIT (e.g.
// the Kubernetes Downward API), a fraction of it is handed to
// GOMEMLIMIT, leaving headroom for libvips and goroutine stacks. An
// explicit GOMEMLIMIT environment variable always wins.
package memory
