// Package driving provides interfaces for application entry points
// (primary/inbound ports): the retrieval pipeline, the job scheduler,
// and the health monitor.
package driving
