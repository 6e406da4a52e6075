// Package preflight provides readiness checks for the filesystem paths,
// stores, and mail transport that vocamail depends on.
//
// The CLI "vocamail status" command runs RunAll and renders each Result. The
// batch commands call CheckDirectoryAccess on the data directory before
// taking the run lock.
package preflight
