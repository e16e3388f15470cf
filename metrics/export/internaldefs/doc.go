// Package internaldefs exposes stable metric name definitions shared by
// exporter implementations, so every exporter publishes identical names and
// bucket boundaries.
package internaldefs
