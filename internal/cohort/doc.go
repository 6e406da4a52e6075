// Package cohort runs the daily fan-out: it partitions subscribers by level,
// selects and stages a fresh word batch for every level that has
// subscribers, and dispatches each batch to that level's recipients only.
//
// Levels are processed independently. A failure in one level is recorded in
// the Report and the loop moves on to the next level.
package cohort
