// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding and generation backends, the
// chunk index, scheduler persistence, and raw-document sources.
package driven
