// Package audit defines the audit event model and the asynchronous
// dispatcher that fans events out to a pluggable sink.
//
// # Architecture boundaries
//
// This package owns event buffering and delivery ordering. Deciding which
// events to emit, and with what metadata, is the engine's job.
//
// # What this package must NOT do
//
//   - Block flow goroutines on sink I/O (delivery is asynchronous).
//   - Import authcore or any sibling package.
package audit
