/*
Package observability provides Prometheus instrumentation for the pipenet dashboard.

It counts topology fetches and their outcome, measures fetch latency, tracks diagram
rebuilds per view, and records suppressed refreshes, identifier collisions and render
errors so operators can tell a stale diagram from a healthy one.
*/
package observability
