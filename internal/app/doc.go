// Package app contains the core application logic. It wires the registry,
// the job-file loader and the executors into the four process roles (local
// run, coordinator, worker and submitter), decoupled from any specific
// entrypoint like a CLI.
package app
