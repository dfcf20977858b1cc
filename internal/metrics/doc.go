// Package metrics exposes Prometheus instrumentation for the emulator:
// connected session count, dispatched events, pruned sessions, and API
// request totals. All recording methods tolerate a nil *Metrics so metrics
// stay an optional concern for every component.
package metrics
