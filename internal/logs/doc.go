// Package logs reads the vocamail log file for the "vocamail logs" command.
//
// Last returns the trailing lines with bounded memory, and Follow polls for
// appended lines until its context ends. Both accept a Filter so a single
// cycle can be isolated by its run_id.
package logs
