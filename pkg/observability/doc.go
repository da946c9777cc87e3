/*
Package observability exposes the engine's lifecycle hooks as Prometheus
metrics.

It translates fetch and recompute events into counters and histograms without
the engine knowing about Prometheus: build the Metrics, pass Metrics.Hooks()
to the engine, and mount promhttp wherever the host serves HTTP.
*/
package observability
