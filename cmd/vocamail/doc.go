// Package main hosts the vocamail CLI entrypoint and command graph.
//
// The Cobra command tree exposes subscriber management, word pool curation,
// ad-hoc selection, the single-batch mail send, the per-level daily cycle,
// and the legacy run-due schedule table. Batch commands that rewrite shared
// files take an advisory lock on <data_dir>/vocamail.lock so overlapping cron
// invocations fail fast instead of interleaving writes.
//
// Commands stay thin: the stores, selector, dispatcher, and orchestrator live
// in internal packages and are constructed here per invocation.
package main
