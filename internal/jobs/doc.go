// Package jobs is the orchestration core of whisperq. The Manager owns the
// job registry, turns ingested file records into jobs, dispatches them in
// waves bounded by the configured parallelism, drives each job through
// convert, transcribe, and format stages, and republishes every state and
// progress change as an event stream.
//
// The registry is the single source of truth: events are best-effort
// notifications, and a dropped event never desynchronizes a status query.
package jobs
